// Package registry is an HTTP client for the mod package registry. It never
// retries: any failure is surfaced to the caller, and re-running the whole
// installation is the retry mechanism.
package registry

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gameserverkit/gsinstall/pkg/errors"
	"github.com/gameserverkit/gsinstall/pkg/logging"
)

// profileMarker is the first line of a legacy profile payload; the rest of
// the payload is a base64-encoded zip.
const profileMarker = "#r2modman"

// Release is the registry's latest-release metadata for a package.
type Release struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Latest    struct {
		VersionNumber string `json:"version_number"`
		DownloadURL   string `json:"download_url"`
	} `json:"latest"`
}

// Client talks to one registry instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given base URL (no trailing slash).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Minute},
	}
}

// LatestRelease fetches the latest-release metadata for namespace/name.
func (c *Client) LatestRelease(ctx context.Context, namespace, name string) (*Release, error) {
	url := fmt.Sprintf("%s/api/experimental/package/%s/%s/", c.baseURL, namespace, name)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	var rel Release
	if err := json.NewDecoder(body).Decode(&rel); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRegistryDecode,
			"failed to decode release metadata for %s/%s", namespace, name)
	}
	if rel.Latest.DownloadURL == "" {
		return nil, errors.Newf(errors.ErrRegistryDecode,
			"release metadata for %s/%s has no download URL", namespace, name)
	}
	return &rel, nil
}

// DownloadVersion fetches the archive for an exact package version into dest.
func (c *Client) DownloadVersion(ctx context.Context, namespace, name, version, dest string) error {
	url := fmt.Sprintf("%s/package/download/%s/%s/%s/", c.baseURL, namespace, name, version)
	return c.Download(ctx, url, dest)
}

// Download streams the given URL into dest. The URL may be absolute (release
// metadata carries full download URLs) or registry-relative.
func (c *Client) Download(ctx context.Context, url, dest string) error {
	log := logging.GetLogger("registry")

	if strings.HasPrefix(url, "/") {
		url = c.baseURL + url
	}

	start := time.Now()
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "failed to create %s", dest)
	}

	n, err := io.Copy(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Remove the partial file so a re-run starts clean.
		_ = os.Remove(dest)
		return errors.Wrapf(err, errors.ErrDownload, "failed to download %s", url)
	}

	log.Debug().Str("url", url).Int64("bytes", n).
		Dur("duration", time.Since(start)).Msg("Download complete")
	return nil
}

// ProfileArchive fetches a legacy profile by its opaque code and writes the
// decoded zip to dest. The payload's first line is a format marker; the
// remainder is base64.
func (c *Client) ProfileArchive(ctx context.Context, code, dest string) error {
	url := fmt.Sprintf("%s/api/experimental/legacyprofile/get/%s/", c.baseURL, code)

	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	raw, err := io.ReadAll(body)
	if err != nil {
		return errors.Wrapf(err, errors.ErrDownload, "failed to read profile %s", code)
	}

	marker, payload, found := strings.Cut(string(raw), "\n")
	if !found || !strings.HasPrefix(strings.TrimSpace(marker), profileMarker) {
		return errors.Newf(errors.ErrProfileDecode,
			"profile %s payload is missing the %s marker", code, profileMarker)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return errors.Wrapf(err, errors.ErrProfileDecode,
			"profile %s payload is not valid base64", code)
	}

	if err := os.WriteFile(dest, decoded, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", dest)
	}
	return nil
}

// get performs a GET and returns the body for a 200 response.
func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRegistryRequest, "failed to build request for %s", url)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRegistryRequest, "request to %s failed", url)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.Newf(errors.ErrRegistryStatus,
			"registry returned %d for %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}
