package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// TranscribeTimeout caps a single transcription call.
const TranscribeTimeout = 15 * time.Second

// ErrTranscribeTimeout indicates the transcription call timed out.
var ErrTranscribeTimeout = errors.New("voice transcription timed out")

// ErrEmptyTranscript indicates the model heard no usable speech.
var ErrEmptyTranscript = errors.New("empty transcript")

// transcribePrompt primes the model to spell numbers as grouped digits
// so the amount extractor sees the same shape as typed messages.
const transcribePrompt = `Расшифруй это голосовое сообщение на русском языке и верни только текст без пояснений.
Числа всегда пиши цифрами с пробелами: сто тысяч = 100 000, два миллиона = 2 000 000, тысяча сто = 1 100, пятьсот = 500, тысяча = 1 000, двадцать тысяч = 20 000.`

// Transcribe converts a voice message into text.
func (c *Client) Transcribe(ctx context.Context, audioBytes []byte, mimeType string) (string, error) {
	if len(audioBytes) == 0 {
		return "", fmt.Errorf("audio data is required")
	}

	if mimeType == "" {
		mimeType = "audio/ogg"
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, TranscribeTimeout)
	defer cancel()

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, []*genai.Content{
		{
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: audioBytes}},
				{Text: transcribePrompt},
			},
		},
	}, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTranscribeTimeout
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	transcript := strings.TrimSpace(responseText(resp))
	if transcript == "" {
		return "", ErrEmptyTranscript
	}

	return transcript, nil
}
