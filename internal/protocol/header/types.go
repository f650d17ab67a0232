package header

import "fmt"

// MessageType is the MSTP field of the extended header.
type MessageType uint8

const (
	TypeLog          MessageType = 0
	TypeAppTrace     MessageType = 1
	TypeNetworkTrace MessageType = 2
	TypeControl      MessageType = 3
)

func (t MessageType) String() string {
	switch t {
	case TypeLog:
		return "log"
	case TypeAppTrace:
		return "app_trace"
	case TypeNetworkTrace:
		return "nw_trace"
	case TypeControl:
		return "control"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(t))
	}
}

func (t MessageType) valid() bool {
	return t <= TypeControl
}

func (t MessageType) validSubtype(sub uint8) bool {
	switch t {
	case TypeLog:
		return sub >= uint8(LogFatal) && sub <= uint8(LogVerbose)
	case TypeAppTrace:
		return sub >= uint8(TraceVariable) && sub <= uint8(TraceVFB)
	case TypeNetworkTrace:
		return sub >= uint8(NetworkIPC) && sub <= 0x0F
	case TypeControl:
		return sub >= uint8(ControlRequest) && sub <= uint8(ControlTime)
	default:
		return false
	}
}

type LogLevel uint8

const (
	LogFatal   LogLevel = 1
	LogError   LogLevel = 2
	LogWarn    LogLevel = 3
	LogInfo    LogLevel = 4
	LogDebug   LogLevel = 5
	LogVerbose LogLevel = 6
)

var logLevelNames = map[LogLevel]string{
	LogFatal:   "fatal",
	LogError:   "error",
	LogWarn:    "warn",
	LogInfo:    "info",
	LogDebug:   "debug",
	LogVerbose: "verbose",
}

func (l LogLevel) String() string {
	if name, ok := logLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", uint8(l))
}

type AppTraceType uint8

const (
	TraceVariable    AppTraceType = 1
	TraceFunctionIn  AppTraceType = 2
	TraceFunctionOut AppTraceType = 3
	TraceState       AppTraceType = 4
	TraceVFB         AppTraceType = 5
)

// NetworkTraceType names the traced bus. Values 7..15 are user defined.
type NetworkTraceType uint8

const (
	NetworkIPC      NetworkTraceType = 1
	NetworkCAN      NetworkTraceType = 2
	NetworkFlexRay  NetworkTraceType = 3
	NetworkMOST     NetworkTraceType = 4
	NetworkEthernet NetworkTraceType = 5
	NetworkSomeIP   NetworkTraceType = 6
)

type ControlType uint8

const (
	ControlRequest  ControlType = 1
	ControlResponse ControlType = 2
	ControlTime     ControlType = 3
)
