package handlers

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/fluentvoice/fluentvoice-backend/internal/services"
)

const maxSynthesisChars = 1000

// Synthesize converts text to audio, serving repeated phrases from the
// content-addressed cache instead of the speech provider.
func Synthesize(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Text  string `json:"text"`
			Voice string `json:"voice"`
		}

		if err := c.BodyParser(&req); err != nil || req.Text == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "text is required",
			})
		}
		if len(req.Text) > maxSynthesisChars {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "text is too long",
			})
		}

		voice := req.Voice
		if voice == "" {
			voice = svc.Config.Speech.Voice
		}

		audio, hit, err := svc.AudioCache.GetOrSynthesize(c.Context(), voice, req.Text, func(ctx context.Context) ([]byte, error) {
			return svc.Speech.TextToSpeech(ctx, req.Text, voice)
		})
		if err != nil {
			svc.Logger.WithError(err).Error("speech synthesis failed")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Speech synthesis failed",
			})
		}

		c.Set("Content-Type", "audio/mpeg")
		c.Set("X-Audio-Cache", cacheStatus(hit))
		return c.Send(audio)
	}
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// Transcribe converts uploaded audio to text
func Transcribe(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("audio")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "audio file is required",
			})
		}

		file, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "could not read audio file",
			})
		}
		defer file.Close()

		audio, err := io.ReadAll(file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "could not read audio file",
			})
		}

		text, err := svc.Speech.SpeechToText(c.Context(), audio, fileHeader.Filename)
		if err != nil {
			svc.Logger.WithError(err).Error("transcription failed")
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Transcription failed",
			})
		}

		return c.JSON(fiber.Map{
			"text": text,
		})
	}
}
