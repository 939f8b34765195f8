package inputlog

import "time"

const (
	EventTypeSyn uint16 = 0x00
	EventTypeKey uint16 = 0x01
	EventTypeRel uint16 = 0x02
	EventTypeAbs uint16 = 0x03

	SynReportCode uint16 = 0
)

// Linux input-event codes. Every source translates its native identifiers to
// these before submitting events.
const (
	CodeKeyEsc   uint16 = 1
	CodeKeyA     uint16 = 30
	CodeKeyS     uint16 = 31
	CodeKeyD     uint16 = 32
	CodeKeyF     uint16 = 33
	CodeKeyX     uint16 = 45
	CodeKeyC     uint16 = 46
	CodeKeySpace uint16 = 57
	CodeKeyF4    uint16 = 62
	CodeKeyUp    uint16 = 103
	CodeKeyLeft  uint16 = 105
	CodeKeyRight uint16 = 106
	CodeKeyDown  uint16 = 108

	CodeBtnLeft   uint16 = 0x110
	CodeBtnRight  uint16 = 0x111
	CodeBtnMiddle uint16 = 0x112

	CodeBtnSouth uint16 = 0x130
	CodeBtnEast  uint16 = 0x131
	CodeBtnNorth uint16 = 0x133
	CodeBtnWest  uint16 = 0x134
	CodeBtnTL    uint16 = 0x136
	CodeBtnTR    uint16 = 0x137

	CodeAbsX  uint16 = 0x00
	CodeAbsY  uint16 = 0x01
	CodeAbsZ  uint16 = 0x02
	CodeAbsRX uint16 = 0x03
	CodeAbsRY uint16 = 0x04
	CodeAbsRZ uint16 = 0x05
)

const (
	DefaultRate          = 10.0
	DefaultRebindTimeout = 10 * time.Second
)

type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

func (e Event) IsPress() bool {
	return e.Type == EventTypeKey && e.Value == 1
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// RateInterval converts a rate in Hz to a tick interval.
func RateInterval(hz float64) time.Duration {
	if hz <= 0 {
		hz = DefaultRate
	}
	return time.Duration(float64(time.Second) / hz)
}
