package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ReleasesURL is the GitHub endpoint for the latest recallviz release.
const ReleasesURL = "https://api.github.com/repos/barfriedman1/FDA-drug-recall/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
	URL           string
}

type ghRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Check asks url (ReleasesURL when empty) for the latest release. It returns
// nil without error when currentVersion is already the latest.
func Check(ctx context.Context, url, currentVersion string) (*Result, error) {
	if url == "" {
		url = ReleasesURL
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("checking latest release: HTTP %d", resp.StatusCode)
	}

	var release ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	current := strings.TrimPrefix(currentVersion, "v")

	if latest == "" || latest == current {
		return nil, nil
	}

	return &Result{LatestVersion: latest, URL: release.HTMLURL}, nil
}
