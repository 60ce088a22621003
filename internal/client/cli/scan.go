package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/vinscanner/internal/client/acquisition"
	"github.com/dmitrijs2005/vinscanner/internal/client/camera"
	"github.com/dmitrijs2005/vinscanner/internal/client/services"
)

func (a *App) report(res services.SubmitResult) {
	switch res.Path {
	case services.PathRemote:
		a.printf("VIN %s saved to inventory\n", res.VIN)
	default:
		a.printf("VIN %s queued for sync (#%d)\n", res.VIN, res.LocalID)
	}
}

// Camera replays the frames in dir through the camera pipeline.
func (a *App) Camera(ctx context.Context, dir string) error {
	src, err := camera.OpenDir(dir, a.config.MaxImageDimension)
	if err != nil {
		return err
	}

	a.controller.SetMode(acquisition.ModeCamera)
	a.printf("Scanning %d frames...\n", src.Len())

	res, err := a.controller.ScanCamera(ctx, src)
	if errors.Is(err, acquisition.ErrNoDetection) {
		a.printf("No valid VIN found\n")
		return nil
	}
	if err != nil {
		return err
	}
	a.report(res)
	return nil
}

func (a *App) Photo(ctx context.Context, path string) error {
	a.controller.SetMode(acquisition.ModeUpload)

	res, err := a.controller.ScanPhotoFile(ctx, path)
	if err != nil {
		return err
	}
	a.report(res)
	return nil
}

// Manual submits input, prompting for it when empty.
func (a *App) Manual(ctx context.Context, input string) error {
	a.controller.SetMode(acquisition.ModeManual)

	if input == "" {
		var err error
		input, err = getSimpleText(a.reader, "Enter VIN (17 characters)", a.out)
		if err != nil {
			return err
		}
	}

	kept := a.controller.SetManualInput(input)
	if !a.controller.CanSubmitManual() {
		a.printf("VIN must be 17 characters, got %d\n", len([]rune(kept)))
		return nil
	}

	res, err := a.controller.SubmitManual(ctx)
	if err != nil {
		return err
	}
	a.report(res)
	return nil
}
