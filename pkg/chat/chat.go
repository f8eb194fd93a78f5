// Package chat formats the plain-text lines the dispatcher broadcasts
// or sends as Classic protocol Message packets. Classic chat is a bare
// 64-byte string (optionally carrying '&' color codes); unlike the
// JSON chat component used by later protocol versions, there is no
// structured payload to build.
package chat

import "fmt"

// Relay formats a player's chat line the way every connected client
// (including the sender) sees it.
func Relay(name, message string) string {
	return fmt.Sprintf("%s: %s", name, message)
}

// Join formats the banner broadcast when a player spawns into the world.
func Join(name string) string {
	return fmt.Sprintf("&e%s joined the game", name)
}

// Goodbye formats the banner broadcast when a player disconnects.
func Goodbye(name string) string {
	return fmt.Sprintf("goodbye %s", name)
}

// Welcome returns the fixed sequence of lines sent to a newcomer right
// after the level transfer and initial teleport.
func Welcome() []string {
	return []string{
		"&eWelcome to the server!",
		"&7Chat is shared with every connected player.",
	}
}
