package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeResolver struct {
	gotFileID string
	file      *models.File
	err       error
}

func (f *fakeResolver) GetFile(_ context.Context, params *bot.GetFileParams) (*models.File, error) {
	f.gotFileID = params.FileID
	if f.err != nil {
		return nil, f.err
	}
	return f.file, nil
}

func (f *fakeResolver) FileDownloadLink(file *models.File) string {
	return "https://api.telegram.org/file/bot123456:TEST/" + file.FilePath
}

func TestScreenshotLinkResolvesLargestPhoto(t *testing.T) {
	h := &Handlers{logger: zap.NewNop()}
	resolver := &fakeResolver{file: &models.File{FileID: "big", FilePath: "photos/file_7.jpg"}}

	photos := []models.PhotoSize{
		{FileID: "thumb", Width: 90},
		{FileID: "mid", Width: 320},
		{FileID: "big", Width: 1280},
	}

	url := h.screenshotLink(context.Background(), resolver, photos)

	assert.Equal(t, "big", resolver.gotFileID)
	assert.Equal(t, "https://api.telegram.org/file/bot123456:TEST/photos/file_7.jpg", url)
}

func TestScreenshotLinkFallsBackToFileID(t *testing.T) {
	h := &Handlers{logger: zap.NewNop()}
	resolver := &fakeResolver{err: errors.New("telegram is down")}

	photos := []models.PhotoSize{{FileID: "only", Width: 640}}

	assert.Equal(t, "only", h.screenshotLink(context.Background(), resolver, photos))
}
