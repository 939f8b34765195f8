//go:build linux

package linuxinput

import (
	"context"
	"fmt"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"
)

// CaptureNextKeyCode waits for the next pressed key or button (EV_KEY with
// value 1) until ctx is done. With no paths it listens on every non-virtual
// keyboard and mouse.
func CaptureNextKeyCode(ctx context.Context, paths []string) (uint16, error) {
	devices, err := openCaptureDevices(paths)
	if err != nil {
		return 0, err
	}
	return captureNextFromDevices(ctx, devices)
}

func captureNextFromDevices(ctx context.Context, devices []*evdev.InputDevice) (uint16, error) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		closeInputDevices(devices)
		wg.Wait()
	}()

	codeCh := make(chan uint16, 1)
	for _, dev := range devices {
		wg.Add(1)
		go func(dev *evdev.InputDevice) {
			defer wg.Done()
			captureDeviceLoop(ctx, dev, codeCh)
		}(dev)
	}

	select {
	case code := <-codeCh:
		return code, nil
	case <-ctx.Done():
		return 0, fmt.Errorf("waiting for key/button input: %w", ctx.Err())
	}
}

func captureDeviceLoop(ctx context.Context, dev *evdev.InputDevice, codeCh chan<- uint16) {
	for {
		if ctx.Err() != nil {
			return
		}

		event, err := dev.ReadOne()
		if err != nil {
			if isDeviceClosedError(err) {
				return
			}
			pause := 25 * time.Millisecond
			if isWouldBlockError(err) {
				pause = 5 * time.Millisecond
			}
			if !sleepContext(ctx, pause) {
				return
			}
			continue
		}
		if event == nil || event.Type != evdev.EV_KEY || event.Value != 1 {
			continue
		}
		select {
		case codeCh <- uint16(event.Code):
		default:
		}
		return
	}
}

func sleepContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func openCaptureDevices(paths []string) ([]*evdev.InputDevice, error) {
	selection, err := OpenSourceSelection(paths, SelectOptions{Keys: true})
	if err != nil {
		return nil, err
	}
	for _, dev := range selection.Devices {
		if err := dev.NonBlock(); err != nil {
			selection.Close()
			return nil, fmt.Errorf("failed to set nonblocking mode for %s: %w", dev.Path(), err)
		}
	}
	return selection.Devices, nil
}
