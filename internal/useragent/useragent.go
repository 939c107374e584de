// Package useragent reduces a User-Agent header to the coarse fields stored
// with popup leads.
package useragent

import (
	"strings"

	"github.com/avct/uasurfer"
)

// Info is the parsed summary of a User-Agent header.
type Info struct {
	Browser string `json:"browser"`
	OS      string `json:"os"`
	Device  string `json:"device"`
	IsBot   bool   `json:"isBot"`
}

// Parse classifies a raw User-Agent header. An empty header yields
// Device "Unknown".
func Parse(raw string) Info {
	if strings.TrimSpace(raw) == "" {
		return Info{Device: "Unknown"}
	}
	u := uasurfer.Parse(raw)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}
	return Info{
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		OS:      osName,
		Device:  deviceName(u.DeviceType),
		IsBot:   u.IsBot(),
	}
}

func deviceName(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceConsole:
		return "Console"
	case uasurfer.DeviceWearable:
		return "Wearable"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}
