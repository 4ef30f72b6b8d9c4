package audio

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultSpeechAPIURL = "https://speech.googleapis.com/v1/speech:recognize"

// Transcriber converts an extracted audio file into text. An empty
// transcript is a valid result; callers degrade gracefully without it.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, language string) (string, error)
}

// SpeechClient transcribes through the Google speech-recognition REST API.
type SpeechClient struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

func NewSpeechClient(apiKey string) *SpeechClient {
	return &SpeechClient{
		apiKey: apiKey,
		apiURL: defaultSpeechAPIURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type recognizeRequest struct {
	Config recognizeConfig  `json:"config"`
	Audio  recognizeContent `json:"audio"`
}

type recognizeConfig struct {
	Encoding        string `json:"encoding"`
	SampleRateHertz int    `json:"sampleRateHertz"`
	LanguageCode    string `json:"languageCode"`
}

type recognizeContent struct {
	Content string `json:"content"`
}

type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *SpeechClient) Transcribe(ctx context.Context, audioPath string, language string) (string, error) {
	if language == "" {
		language = "en-US"
	}

	audioData, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	reqBody := recognizeRequest{
		Config: recognizeConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: 16000,
			LanguageCode:    language,
		},
		Audio: recognizeContent{
			Content: base64.StdEncoding.EncodeToString(audioData),
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal recognize request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", c.apiURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read speech response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("speech API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result recognizeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse speech response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("speech API error %d: %s", result.Error.Code, result.Error.Message)
	}

	var parts []string
	for _, r := range result.Results {
		if len(r.Alternatives) > 0 {
			parts = append(parts, r.Alternatives[0].Transcript)
		}
	}

	transcript := strings.TrimSpace(strings.Join(parts, " "))
	if transcript == "" {
		return "[No speech detected]", nil
	}
	return transcript, nil
}
