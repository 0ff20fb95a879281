package main

import "github.com/pkg/errors"

// ServerConfig is the server's configuration: listening port and shared
// password. Immutable for the lifetime of a listening socket, per
// spec.md §3.
type ServerConfig struct {
	Port     int
	Password string

	// ServerName is used as the source prefix on numeric replies and as
	// the PING/PONG origin token.
	ServerName string
}

// newServerConfig validates args and builds a ServerConfig. Wrapping the
// error here (rather than just returning it) gives main a stack-
// annotated cause to log on a fatal startup failure, matching how
// pkg/errors is used elsewhere in this dependency's ecosystem.
func newServerConfig(args *Args) (*ServerConfig, error) {
	if args.Port < 1 || args.Port > 65535 {
		return nil, errors.Errorf("port %d out of range 1-65535", args.Port)
	}
	if len(args.Password) == 0 {
		return nil, errors.New("password may not be empty")
	}

	return &ServerConfig{
		Port:       args.Port,
		Password:   args.Password,
		ServerName: "ircserv",
	}, nil
}
