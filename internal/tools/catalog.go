package tools

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bdubs00/mcga-mcp/internal/format"
	"github.com/bdubs00/mcga-mcp/internal/upstream"
)

// Argument names shared by several tools.
const (
	ParamServerName = "server_name"
	ParamFileName   = "file_name"
	ParamKey        = "key"
	ParamValue      = "value"
	ParamMapName    = "map_name"
	ParamCommand    = "command"
)

var coordinates = []string{"x1", "y1", "z1", "x2", "y2", "z2"}

var serverNameParam = Param{Name: ParamServerName, Kind: KindString, Required: true, Description: "Name of the Minecraft server"}

// Catalog returns every tool this server exposes, in listing order.
func Catalog() []Spec {
	return []Spec{
		{
			Name:        "list_servers",
			Description: "List all Minecraft servers with their status, JAR file and JVM parameters",
			Run:         listServers,
		},
		{
			Name:        "start_server",
			Description: "Start the named Minecraft server",
			Params:      []Param{serverNameParam},
			Mutating:    true,
			Run:         lifecycle("start", format.Started),
		},
		{
			Name:        "stop_server",
			Description: "Stop the named Minecraft server",
			Params:      []Param{serverNameParam},
			Mutating:    true,
			Run:         lifecycle("stop", format.Stopped),
		},
		{
			Name:        "backup_server",
			Description: "Back up the world of the named server, optionally under a given file name",
			Params: []Param{
				serverNameParam,
				{Name: ParamFileName, Kind: KindString, Description: "Backup file name; the server picks one when omitted"},
			},
			Mutating: true,
			Run:      backupServer,
		},
		{
			Name:        "list_server_properties",
			Description: "List the server.properties entries of the named server",
			Params:      []Param{serverNameParam},
			Run:         listProperties,
		},
		{
			Name:        "update_server_property",
			Description: "Set one server.properties entry of the named server",
			Params: []Param{
				serverNameParam,
				{Name: ParamKey, Kind: KindString, Required: true, Description: "Property key, e.g. motd"},
				{Name: ParamValue, Kind: KindString, Required: true, Description: "New property value"},
			},
			Mutating: true,
			Run:      updateProperty,
		},
		{
			Name:        "get_server_status",
			Description: "Show the status of one server",
			Params:      []Param{serverNameParam},
			Run:         serverStatus,
		},
		{
			Name:        "get_chest_info",
			Description: "Report the contents of every container inside the box spanned by two corner points",
			Params:      coordinateParams(),
			Run:         chestInfo,
		},
		{
			Name:        "reload_server_container",
			Description: "Reload the container that hosts the named server",
			Params:      []Param{serverNameParam},
			Mutating:    true,
			Run:         reloadContainer,
		},
		{
			Name:        "load_map",
			Description: "Load a backed-up map into the named server; the server must be stopped",
			Params: []Param{
				serverNameParam,
				{Name: ParamMapName, Kind: KindString, Required: true, Description: "Name of the map backup to load"},
			},
			Mutating: true,
			Run:      loadMap,
		},
		{
			Name:        "send_command_rcon",
			Description: "Run a console command over RCON and return its output",
			Params: []Param{
				serverNameParam,
				{Name: ParamCommand, Kind: KindString, Required: true, Description: "Console command without the leading slash"},
			},
			Mutating: true,
			Run:      rconCommand,
		},
		{
			Name:        "send_command",
			Description: "Write a command to the server console without waiting for output",
			Params: []Param{
				serverNameParam,
				{Name: ParamCommand, Kind: KindString, Required: true, Description: "Console command"},
			},
			Mutating: true,
			Run:      sendCommand,
		},
		{
			Name:        "get_system_overhead",
			Description: "Report CPU, memory, load, disk and network usage of the host",
			Run:         systemOverhead,
		},
	}
}

func coordinateParams() []Param {
	params := make([]Param, len(coordinates))
	for i, name := range coordinates {
		params[i] = Param{Name: name, Kind: KindInteger, Required: true, Description: "Corner coordinate " + name}
	}
	return params
}

func listServers(ctx context.Context, c *Call) (string, error) {
	payload, _, err := c.fetch(ctx, http.MethodGet, "/server/", nil)
	if err != nil {
		return "", err
	}
	return format.ServerList(payload)
}

func lifecycle(action string, message func(string) string) RunFunc {
	return func(ctx context.Context, c *Call) (string, error) {
		name, err := c.Server()
		if err != nil {
			return "", err
		}
		if _, _, err := c.fetch(ctx, http.MethodPost, upstream.ServerPath(name, action), nil); err != nil {
			return "", err
		}
		return message(name), nil
	}
}

func backupServer(ctx context.Context, c *Call) (string, error) {
	name, err := c.Server()
	if err != nil {
		return "", err
	}
	var query url.Values
	fileName := c.OptionalString(ParamFileName)
	if fileName != "" {
		query = url.Values{"fileName": {fileName}}
	}
	if _, _, err := c.fetch(ctx, http.MethodPost, upstream.ServerPath(name, "backup"), query); err != nil {
		return "", err
	}
	return format.BackedUp(name, fileName), nil
}

func listProperties(ctx context.Context, c *Call) (string, error) {
	name, err := c.Server()
	if err != nil {
		return "", err
	}
	payload, _, err := c.fetch(ctx, http.MethodGet, upstream.ServerPath(name, "properties"), nil)
	if err != nil {
		return "", err
	}
	return format.Properties(payload, name)
}

func updateProperty(ctx context.Context, c *Call) (string, error) {
	name, err := c.Server()
	if err != nil {
		return "", err
	}
	key, err := c.String(ParamKey)
	if err != nil {
		return "", err
	}
	value, err := c.String(ParamValue)
	if err != nil {
		return "", err
	}
	query := url.Values{"key": {key}, "value": {value}}
	if _, _, err := c.fetch(ctx, http.MethodPost, upstream.ServerPath(name, "property"), query); err != nil {
		return "", err
	}
	return format.PropertyUpdated(name, key, value), nil
}

func serverStatus(ctx context.Context, c *Call) (string, error) {
	name, err := c.Server()
	if err != nil {
		return "", err
	}
	payload, _, err := c.fetch(ctx, http.MethodGet, "/server/", nil)
	if err != nil {
		return "", err
	}
	return format.ServerStatus(payload, name)
}

func chestInfo(ctx context.Context, c *Call) (string, error) {
	query := url.Values{}
	for _, name := range coordinates {
		v, err := c.Int(name)
		if err != nil {
			return "", err
		}
		query.Set(name, itoa(v))
	}
	payload, _, err := c.fetch(ctx, http.MethodGet, "/chest_info", query)
	if err != nil {
		return "", err
	}
	return format.ChestInfo(payload)
}

func reloadContainer(ctx context.Context, c *Call) (string, error) {
	name, err := c.Server()
	if err != nil {
		return "", err
	}
	payload, _, err := c.fetch(ctx, http.MethodPost, upstream.ServerPath(name, "reload"), nil)
	if err != nil {
		return "", err
	}
	return format.RawResult(payload), nil
}

func loadMap(ctx context.Context, c *Call) (string, error) {
	name, err := c.Server()
	if err != nil {
		return "", err
	}
	mapName, err := c.String(ParamMapName)
	if err != nil {
		return "", err
	}
	query := url.Values{"mapName": {mapName}}
	if _, _, err := c.fetch(ctx, http.MethodPost, upstream.ServerPath(name, "loadMap"), query); err != nil {
		return "", err
	}
	return format.MapLoaded(name, mapName), nil
}

func rconCommand(ctx context.Context, c *Call) (string, error) {
	name, err := c.Server()
	if err != nil {
		return "", err
	}
	command, err := c.String(ParamCommand)
	if err != nil {
		return "", err
	}
	payload, raw, err := c.fetch(ctx, http.MethodPost, upstream.ServerPath(name, "rcon"), url.Values{"command": {command}})
	if err != nil {
		return "", err
	}
	return format.CommandResult(payload, raw), nil
}

func sendCommand(ctx context.Context, c *Call) (string, error) {
	name, err := c.Server()
	if err != nil {
		return "", err
	}
	command, err := c.String(ParamCommand)
	if err != nil {
		return "", err
	}
	if _, _, err := c.fetch(ctx, http.MethodPost, upstream.ServerPath(name, "command"), url.Values{"command": {command}}); err != nil {
		return "", err
	}
	return format.CommandSent(name, command), nil
}

func systemOverhead(ctx context.Context, c *Call) (string, error) {
	payload, _, err := c.fetch(ctx, http.MethodGet, "/stat/overhead", nil)
	if err != nil {
		return "", err
	}
	return format.Overhead(payload)
}
