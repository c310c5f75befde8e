package platform

// Package platform contains OS integration glue: filesystem helpers, the default
// project directory, and revealing archives in the system file manager.
