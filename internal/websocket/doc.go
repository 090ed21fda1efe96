// Package websocket pushes live dashboard updates to browser clients.
//
// A Hub owns the set of connected clients. Handler upgrades requests on
// /ws and registers one Client per connection; each client runs a read
// pump and a write pump. When the dataset store finishes a load the hub
// broadcasts a data_update message:
//
//	{"type":"data_update","subtype":"dataset","action":"refresh",
//	 "data":{"source":"...","record_count":42,"loaded_at":"..."}}
//
// Clients that cannot keep up are disconnected rather than slowing the
// broadcast for everyone else.
package websocket
