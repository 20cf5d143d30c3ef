//go:build systemd_nobus

package sd

// HaveBus is whether the sd-bus functions are available.
const HaveBus = false
