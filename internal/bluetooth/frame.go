package bluetooth

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"eddystone-radar.klederson.com/internal/beacon"
)

// EddystoneServiceUUID is the 16-bit service UUID carrying Eddystone frames.
const EddystoneServiceUUID uint16 = 0xFEAA

// Frame type, first byte of the service data.
const (
	frameTypeUID   = 0x00
	frameTypeURL   = 0x10
	frameTypeTLM   = 0x20
	frameTypeEID   = 0x30
	frameTypeEmpty = 0x40
)

var (
	ErrShortFrame       = errors.New("frame too short")
	ErrUnknownFrameType = errors.New("unknown frame type")
	ErrUnknownURLScheme = errors.New("unknown URL scheme")
)

var urlSchemes = []string{
	"http://www.",
	"https://www.",
	"http://",
	"https://",
}

var urlExpansions = []string{
	".com/", ".org/", ".edu/", ".net/", ".info/", ".biz/", ".gov/",
	".com", ".org", ".edu", ".net", ".info", ".biz", ".gov",
}

// ParseServiceData turns Eddystone service data received from uid into a
// frame. Only the fields the registry consumes are extracted.
func ParseServiceData(uid string, rssi int, data []byte) (beacon.Frame, error) {
	if len(data) < 1 {
		return beacon.Frame{}, ErrShortFrame
	}

	f := beacon.Frame{UID: uid, RSSI: rssi}
	switch data[0] {
	case frameTypeUID:
		// tx power, 10-byte namespace, 6-byte instance
		if len(data) < 18 {
			return beacon.Frame{}, fmt.Errorf("UID frame of %d bytes: %w", len(data), ErrShortFrame)
		}
		f.Kind = beacon.FrameUID
		f.TxPower = int(int8(data[1]))
		f.ID = hex.EncodeToString(data[2:18])

	case frameTypeEID:
		// tx power, 8-byte ephemeral id
		if len(data) < 10 {
			return beacon.Frame{}, fmt.Errorf("EID frame of %d bytes: %w", len(data), ErrShortFrame)
		}
		f.Kind = beacon.FrameEID
		f.TxPower = int(int8(data[1]))
		f.ID = hex.EncodeToString(data[2:10])

	case frameTypeURL:
		if len(data) < 3 {
			return beacon.Frame{}, fmt.Errorf("URL frame of %d bytes: %w", len(data), ErrShortFrame)
		}
		url, err := decodeURL(data[2], data[3:])
		if err != nil {
			return beacon.Frame{}, err
		}
		f.Kind = beacon.FrameURL
		f.TxPower = int(int8(data[1]))
		f.URL = url

	case frameTypeTLM:
		// version, battery mV (uint16), temperature (8.8 fixed point)
		if len(data) < 6 {
			return beacon.Frame{}, fmt.Errorf("TLM frame of %d bytes: %w", len(data), ErrShortFrame)
		}
		f.Kind = beacon.FrameTelemetry
		f.Voltage = int(data[2])<<8 | int(data[3])
		f.Temp = float64(int16(uint16(data[4])<<8|uint16(data[5]))) / 256

	case frameTypeEmpty:
		f.Kind = beacon.FrameEmpty

	default:
		return beacon.Frame{}, fmt.Errorf("type 0x%02x: %w", data[0], ErrUnknownFrameType)
	}
	return f, nil
}

func decodeURL(scheme byte, encoded []byte) (string, error) {
	if int(scheme) >= len(urlSchemes) {
		return "", fmt.Errorf("scheme 0x%02x: %w", scheme, ErrUnknownURLScheme)
	}
	if len(encoded) > 17 {
		encoded = encoded[:17]
	}

	var sb strings.Builder
	sb.WriteString(urlSchemes[scheme])
	for _, c := range encoded {
		if int(c) < len(urlExpansions) {
			sb.WriteString(urlExpansions[c])
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String(), nil
}
