package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"post-approval-verification/shared"
)

// FaceService is the face verification collaborator. The three calls are
// strictly sequential in the flow: a liveliness check is never issued before
// the photograph save resolves, and a face match never before liveliness.
type FaceService interface {
	SavePhotograph(ctx context.Context, userID, jpegBase64 string) error
	CheckLiveliness(ctx context.Context, userID string) (shared.LivelinessResult, error)
	CheckFaceMatch(ctx context.Context, userID string) (shared.FaceMatchResult, error)
}

// HTTPFaceService implements FaceService against the face verification API.
type HTTPFaceService struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPFaceService creates a new instance of HTTPFaceService.
func NewHTTPFaceService(baseURL string) *HTTPFaceService {
	return &HTTPFaceService{baseURL: baseURL, httpClient: newHTTPClient()}
}

func (c *HTTPFaceService) SavePhotograph(ctx context.Context, userID, jpegBase64 string) error {
	_, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/face/photograph", c.baseURL), map[string]string{
		"userId": userID,
		"image":  jpegBase64,
	})
	return err
}

func (c *HTTPFaceService) CheckLiveliness(ctx context.Context, userID string) (shared.LivelinessResult, error) {
	env, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/face/liveliness", c.baseURL), map[string]string{
		"userId": userID,
	})
	if err != nil {
		return shared.LivelinessResult{}, err
	}

	var data struct {
		Liveliness struct {
			Liveliness bool    `json:"liveliness"`
			Score      float64 `json:"score"`
		} `json:"liveliness"`
	}
	if err := decodeData(env, &data); err != nil {
		return shared.LivelinessResult{}, err
	}

	result := shared.LivelinessResult{Live: data.Liveliness.Liveliness, Score: data.Liveliness.Score}
	slog.Info("Liveliness check completed", "userId", userID, "live", result.Live, "score", result.Score)
	return result, nil
}

func (c *HTTPFaceService) CheckFaceMatch(ctx context.Context, userID string) (shared.FaceMatchResult, error) {
	env, err := postJSON(ctx, c.httpClient, fmt.Sprintf("%s/api/face/match", c.baseURL), map[string]string{
		"userId": userID,
	})
	if err != nil {
		return shared.FaceMatchResult{}, err
	}

	var data struct {
		Result struct {
			Verified bool `json:"verified"`
		} `json:"result"`
	}
	if err := decodeData(env, &data); err != nil {
		return shared.FaceMatchResult{}, err
	}

	slog.Info("Face match completed", "userId", userID, "verified", data.Result.Verified)
	return shared.FaceMatchResult{Verified: data.Result.Verified}, nil
}
