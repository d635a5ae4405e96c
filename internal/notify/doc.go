// Package notify publishes compile and reload events to an editor. A
// socket.io publisher talks to a live endpoint; the log publisher stands in
// when no endpoint is configured.
package notify
