// Package notifications pushes operational events to an ntfy topic.
//
// The default implementation publishes to ntfy using the topic configured
// in config.toml and gracefully degrades to a no-op when notifications are
// disabled, so the daemon never branches on whether they are enabled.
package notifications
