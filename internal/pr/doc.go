// Package pr holds the pull-request data the bot works with, independent of
// the hosting platform that supplied it.
package pr
