package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/gemini"
	"github.com/SDaiBots/sd.zenmoney.bot.01/internal/logger"
	appmodels "github.com/SDaiBots/sd.zenmoney.bot.01/internal/models"
)

// maxVoiceFileSize caps voice downloads. Telegram voice notes are
// small; anything bigger is rejected before transcription.
const maxVoiceFileSize = 20 << 20

// handleVoiceCore transcribes a voice message and runs the transcript
// through the regular record drafting flow.
func (b *Bot) handleVoiceCore(ctx context.Context, tg TelegramAPI, msg *tgmodels.Message, user *appmodels.User) {
	chatID := msg.Chat.ID

	logger.Log.Info().
		Str("chat_hash", logger.HashChatID(chatID)).
		Int("duration", msg.Voice.Duration).
		Msg("Received voice message")

	if b.transcriber == nil {
		b.reply(ctx, tg, chatID, msg.ID, "🎙️ Распознавание голоса не настроено. Отправьте запись текстом.")
		return
	}

	audioBytes, err := b.downloadFile(ctx, tg, msg.Voice.FileID)
	if err != nil {
		logger.Log.Error().Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Failed to download voice file")
		b.reply(ctx, tg, chatID, msg.ID, "❌ Не удалось загрузить голосовое сообщение. Попробуйте еще раз.")
		return
	}

	mimeType := msg.Voice.MimeType
	if mimeType == "" {
		mimeType = "audio/ogg"
	}

	transcript, err := b.transcriber.Transcribe(ctx, audioBytes, mimeType)
	if err != nil {
		logger.Log.Error().Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Failed to transcribe voice message")
		b.reply(ctx, tg, chatID, msg.ID, describeTranscribeError(err))
		return
	}

	logger.Log.Info().
		Str("chat_hash", logger.HashChatID(chatID)).
		Str("transcript", logger.SanitizeText(transcript)).
		Msg("Voice message transcribed")

	b.reply(ctx, tg, chatID, msg.ID, "🎙️ Распознано: "+transcript)

	b.handleNewRecordCore(ctx, tg, chatID, msg.ID, transcript, user)
}

// describeTranscribeError maps transcription errors to user messages.
func describeTranscribeError(err error) string {
	switch {
	case errors.Is(err, gemini.ErrTranscribeTimeout):
		return "⏱️ Распознавание заняло слишком много времени. Попробуйте еще раз."
	case errors.Is(err, gemini.ErrEmptyTranscript):
		return "❌ Не удалось распознать речь. Попробуйте еще раз или отправьте текстом."
	default:
		return "❌ Ошибка при распознавании голосового сообщения."
	}
}

// downloadFile fetches a Telegram file by its id.
func (b *Bot) downloadFile(ctx context.Context, tg TelegramAPI, fileID string) ([]byte, error) {
	file, err := tg.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	url := tg.FileDownloadLink(file)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected download status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxVoiceFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}
	if len(data) > maxVoiceFileSize {
		return nil, fmt.Errorf("file exceeds %d bytes", maxVoiceFileSize)
	}

	return data, nil
}
