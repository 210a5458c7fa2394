package newscopy

// Version is the version of the news copy backend.
var Version = "v0.1.0"
