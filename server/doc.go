// Package server exposes the cloud anchor flow as an MCP tool server.
//
// Every MCP connection is a device with its own controller, manager and frame
// loop; devices share the cloud service and the short code store, so an
// anchor hosted by one client can be resolved by another. Messages a device
// shows to its user are sent to the client as notifications/message.
//
//	s, _ := server.New(server.WithCloudService(service))
//	log.Fatal(s.HTTP(ctx, ":5000").ListenAndServe())
package server
