package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	creditsRequest "github.com/Amitsjoysm/payment-service/internal/delivery/http/dto/credits/request"
	creditsResponse "github.com/Amitsjoysm/payment-service/internal/delivery/http/dto/credits/response"
)

// HTTPCreditsHandler is the client for the external user-account service
// that owns credit balances.
type HTTPCreditsHandler struct {
	Address    string
	httpClient *http.Client
}

func NewHTTPCreditsHandler(address string) (*HTTPCreditsHandler, error) {
	return &HTTPCreditsHandler{
		Address: address,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

func (h *HTTPCreditsHandler) GrantCredits(ctx context.Context, userID string, credits int64) error {
	requestBodyBytes, err := json.Marshal(creditsRequest.GrantRequest{
		UserID:  userID,
		Credits: credits,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/users/credits/grant", h.Address), bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	var errorResponse creditsResponse.ErrorResponse
	if err := json.Unmarshal(responseBodyBytes, &errorResponse); err != nil {
		return fmt.Errorf("credits service responded %d", response.StatusCode)
	}
	return errors.New(errorResponse.Error)
}
