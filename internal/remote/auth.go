package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// AuthError is a failed login exchange, surfaced to the login form only
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login failed (status %d): %s", e.Status, e.Message)
}

type loginRequest struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// LoginByStudent exchanges (student_id, name) for a bearer token via the
// external login function endpoint. Non-2xx responses become an AuthError
// carrying the endpoint's error or message field.
func (c *Client) LoginByStudent(ctx context.Context, studentID, name string) (string, error) {
	raw, err := json.Marshal(loginRequest{StudentID: studentID, Name: name})
	if err != nil {
		return "", fmt.Errorf("login: encode request: %w", err)
	}

	endpoint := c.baseURL + "/functions/v1/login_by_student"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("login: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("login: read response: %w", err)
	}

	// The body may not be JSON at all, a failed decode just leaves fields empty
	var decoded loginResponse
	_ = json.Unmarshal(body, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := decoded.Error
		if msg == "" {
			msg = decoded.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("登录失败 (%d)", resp.StatusCode)
		}
		return "", &AuthError{Status: resp.StatusCode, Message: msg}
	}

	if decoded.Token == "" {
		return "", &AuthError{Status: resp.StatusCode, Message: "未获取到令牌"}
	}

	return decoded.Token, nil
}
