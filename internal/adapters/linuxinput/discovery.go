//go:build linux

package linuxinput

import (
	"fmt"
	"os"
	"sort"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

type DeviceInfo struct {
	Path      string
	Name      string
	IsVirtual bool
	Class     DeviceClass
}

// Role decides which path of the logger a device feeds.
type Role int

const (
	RoleKeys Role = iota + 1
	RolePad
)

type SelectOptions struct {
	Keys    bool
	Gamepad bool
}

type SourceSelection struct {
	Devices []*evdev.InputDevice
	Roles   map[string]Role
}

func (s *SourceSelection) Close() {
	closeInputDevices(s.Devices)
}

func (s *SourceSelection) Count(role Role) int {
	n := 0
	for _, r := range s.Roles {
		if r == role {
			n++
		}
	}
	return n
}

func ListInputDevices() ([]DeviceInfo, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}

	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Path < paths[j].Path
	})

	devices := make([]DeviceInfo, 0, len(paths))
	var firstErr error
	for _, path := range paths {
		dev, err := openInputDevice(path.Path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		devices = append(devices, describeDevice(dev, path.Name))
		_ = dev.Close()
	}

	if len(devices) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return devices, nil
}

// OpenSourceSelection opens the given device paths, or every non-virtual
// keyboard, mouse and gamepad when paths is empty, and assigns each a role.
func OpenSourceSelection(paths []string, opts SelectOptions) (*SourceSelection, error) {
	if !opts.Keys && !opts.Gamepad {
		return nil, fmt.Errorf("no input roles requested")
	}
	if len(paths) > 0 {
		return openExplicitDevices(paths, opts)
	}

	listed, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].Path < listed[j].Path
	})

	selection := &SourceSelection{Roles: make(map[string]Role)}
	var firstErr error
	for _, path := range listed {
		dev, err := openInputDevice(path.Path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		info := describeDevice(dev, path.Name)
		role, ok := roleFor(info.Class, opts)
		if info.IsVirtual || !ok {
			_ = dev.Close()
			continue
		}
		selection.Devices = append(selection.Devices, dev)
		selection.Roles[dev.Path()] = role
	}

	if opts.Keys && selection.Count(RoleKeys) == 0 {
		selection.Close()
		if firstErr != nil {
			return nil, fmt.Errorf("no readable keyboard or mouse device: %w", firstErr)
		}
		return nil, fmt.Errorf("no keyboard or mouse input device found; run `inputlogger devices` and pass --device")
	}
	if len(selection.Devices) == 0 {
		if firstErr != nil {
			return nil, fmt.Errorf("no readable gamepad device: %w", firstErr)
		}
		return nil, fmt.Errorf("no gamepad input device found")
	}
	return selection, nil
}

func openExplicitDevices(paths []string, opts SelectOptions) (*SourceSelection, error) {
	selection := &SourceSelection{Roles: make(map[string]Role, len(paths))}
	for _, path := range paths {
		dev, err := openInputDevice(path)
		if err != nil {
			selection.Close()
			return nil, err
		}
		info := describeDevice(dev, "")
		role, ok := roleFor(info.Class, opts)
		if !ok {
			_ = dev.Close()
			selection.Close()
			return nil, fmt.Errorf("%s is a %s device, which the selected backends do not read", path, info.Class)
		}
		selection.Devices = append(selection.Devices, dev)
		selection.Roles[dev.Path()] = role
	}
	return selection, nil
}

func roleFor(class DeviceClass, opts SelectOptions) (Role, bool) {
	switch class {
	case ClassKeyboard, ClassPointer:
		return RoleKeys, opts.Keys
	case ClassGamepad:
		return RolePad, opts.Gamepad
	default:
		return 0, false
	}
}

func describeDevice(dev *evdev.InputDevice, fallbackName string) DeviceInfo {
	name := fallbackName
	if actualName, err := dev.Name(); err == nil && actualName != "" {
		name = actualName
	}
	return DeviceInfo{
		Path:      dev.Path(),
		Name:      name,
		IsVirtual: deviceIsVirtual(dev, name),
		Class: Classify(Capabilities{
			Keys: dev.CapableEvents(evdev.EV_KEY),
			Abs:  dev.CapableEvents(evdev.EV_ABS),
			Rel:  dev.CapableEvents(evdev.EV_REL),
		}),
	}
}

func openInputDevice(path string) (*evdev.InputDevice, error) {
	return evdev.OpenWithFlags(path, os.O_RDONLY)
}

func deviceIsVirtual(device *evdev.InputDevice, name string) bool {
	id, err := device.InputID()
	if err == nil && id.BusType == uint16(evdev.BUS_VIRTUAL) {
		return true
	}
	lower := strings.ToLower(name)
	for _, token := range []string{"virtual", "uinput", "ydotool"} {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func closeInputDevices(devices []*evdev.InputDevice) {
	for _, dev := range devices {
		_ = dev.Close()
	}
}
