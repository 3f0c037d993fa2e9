package roblox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// thumbnailBatchLimit is the maximum number of IDs the thumbnail endpoint
// accepts per call.
const thumbnailBatchLimit = 100

type thumbnailRecord struct {
	TargetID int64  `json:"targetId"`
	State    string `json:"state"`
	ImageURL string `json:"imageUrl"`
}

type thumbnailResponse struct {
	Data []thumbnailRecord `json:"data"`
}

// AssetThumbnails resolves thumbnail URLs for a set of asset IDs, batching the
// upstream calls to respect the per-call ID limit. IDs without a completed
// thumbnail are absent from the result.
func (c *Client) AssetThumbnails(ctx context.Context, assetIDs []int64) (map[int64]string, error) {
	urls := make(map[int64]string, len(assetIDs))

	for start := 0; start < len(assetIDs); start += thumbnailBatchLimit {
		end := start + thumbnailBatchLimit
		if end > len(assetIDs) {
			end = len(assetIDs)
		}

		batch, err := c.fetchThumbnailBatch(ctx, assetIDs[start:end])
		if err != nil {
			return nil, err
		}
		for id, url := range batch {
			urls[id] = url
		}
	}

	return urls, nil
}

func (c *Client) fetchThumbnailBatch(ctx context.Context, assetIDs []int64) (map[int64]string, error) {
	ids := make([]string, len(assetIDs))
	for i, id := range assetIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	endpoint := fmt.Sprintf("%s/v1/assets?assetIds=%s&size=420x420&format=Png&isCircular=false",
		c.thumbnailsBaseURL, strings.Join(ids, ","))

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, "")
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch thumbnails: unexpected status %d", resp.StatusCode)
	}

	var body thumbnailResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	urls := make(map[int64]string, len(body.Data))
	for _, record := range body.Data {
		if record.ImageURL != "" {
			urls[record.TargetID] = record.ImageURL
		}
	}

	return urls, nil
}

// AvatarHeadshot resolves the headshot thumbnail URL for one user.
func (c *Client) AvatarHeadshot(ctx context.Context, userID int64) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/users/avatar-headshot?userIds=%d&size=150x150&format=Png&isCircular=false",
		c.thumbnailsBaseURL, userID)

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, "")
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch avatar: unexpected status %d", resp.StatusCode)
	}

	var body thumbnailResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}

	for _, record := range body.Data {
		if record.TargetID == userID && record.ImageURL != "" {
			return record.ImageURL, nil
		}
	}

	return "", fmt.Errorf("no avatar for user %d", userID)
}
