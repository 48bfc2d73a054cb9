package format

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Failure is the text returned for a failed tool call.
func Failure(op string, err error) string {
	return fmt.Sprintf("%s failed: %v", op, err)
}

// Started confirms a start request.
func Started(name string) string {
	return fmt.Sprintf("Start command sent to server '%s'.", name)
}

// Stopped confirms a stop request.
func Stopped(name string) string {
	return fmt.Sprintf("Stop command sent to server '%s'.", name)
}

// BackedUp names the backup file, or notes that the upstream picked one.
func BackedUp(name, fileName string) string {
	if strings.TrimSpace(fileName) == "" {
		return fmt.Sprintf("Server '%s' backed up (default file name).", name)
	}
	return fmt.Sprintf("Server '%s' backed up as %s.", name, fileName)
}

// PropertyUpdated confirms a server.properties change.
func PropertyUpdated(name, key, value string) string {
	return fmt.Sprintf("Property '%s' of server '%s' set to '%s'.", key, name, value)
}

// MapLoaded confirms a map switch.
func MapLoaded(name, mapName string) string {
	return fmt.Sprintf("Map '%s' loaded on server '%s'.", mapName, name)
}

// CommandSent confirms a console command was queued.
func CommandSent(name, command string) string {
	return fmt.Sprintf("Command '%s' sent to server '%s'.", command, name)
}

// RawResult echoes a payload as compact JSON.
func RawResult(payload json.RawMessage) string {
	if len(payload) == 0 {
		return "(no output)"
	}
	return compact(payload)
}

// CommandResult returns the console output of an RCON call. The result is
// looked up in the normalized payload first, then at the top level of the
// raw response; when neither carries one the payload is echoed instead.
func CommandResult(payload, raw json.RawMessage) string {
	for _, src := range []json.RawMessage{payload, raw} {
		if res, ok := member(src, "result"); ok {
			out := text(res)
			if out == "" {
				return "(no output)"
			}
			return out
		}
	}
	return RawResult(payload)
}
