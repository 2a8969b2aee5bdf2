// Package bridge is a client for the HTTP introspection server that a
// Delphi/VCL application exposes from inside its own process. The server
// reports every VCL control, including non-windowed ones that standard
// Windows UI Automation cannot see.
//
// The server binds an ephemeral port, so the client finds it by probing
// local listening sockets and re-discovers it when the application
// restarts. A Client is not safe for concurrent use; callers serialise
// access, one tool invocation at a time.
package bridge
