package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ErrBlockedAddress is returned when a download would connect to a loopback,
// private or otherwise internal address.
var ErrBlockedAddress = errors.New("destination address is not allowed")

// downloadClient dials public addresses only. The check runs on the resolved
// IP of every connection, so redirects and DNS rebinding are covered too.
var downloadClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second,
			Control: guardDial,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
	},
}

func guardDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil || !isPublicAddr(addr) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsValid() &&
		!addr.IsLoopback() &&
		!addr.IsPrivate() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsLinkLocalMulticast() &&
		!addr.IsInterfaceLocalMulticast() &&
		!addr.IsMulticast() &&
		!addr.IsUnspecified() &&
		!sharedAddressSpace.Contains(addr)
}

// 100.64.0.0/10 is carrier-grade NAT space, which cloud metadata services
// also use.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// DownloadImage fetches imageURL over http or https, refusing internal
// destinations, bodies larger than maxSize and payloads that do not sniff as
// an image. It returns the bytes and the detected content type.
func DownloadImage(ctx context.Context, imageURL string, maxSize int64) ([]byte, string, error) {
	return download(ctx, downloadClient, imageURL, maxSize)
}

func download(ctx context.Context, client *http.Client, imageURL string, maxSize int64) ([]byte, string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid image url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}

	if len(imageData) == 0 {
		return nil, "", fmt.Errorf("empty image data")
	}
	if int64(len(imageData)) > maxSize {
		return nil, "", fmt.Errorf("image exceeds maximum size of %d bytes", maxSize)
	}

	contentType := DetectContentType(imageData)
	if !IsValidImageType(contentType) {
		return nil, "", fmt.Errorf("invalid content type: %s", contentType)
	}

	return imageData, contentType, nil
}

// DetectContentType sniffs the MIME type from the payload itself; declared
// client types are not trusted.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsValidImageType checks if content type is a valid image type
func IsValidImageType(contentType string) bool {
	validTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
		"image/bmp",
		"image/tiff",
	}

	ct := strings.ToLower(contentType)
	for _, validType := range validTypes {
		if strings.Contains(ct, validType) {
			return true
		}
	}
	return false
}
