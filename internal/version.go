package internal

// Version is the release version of the twovoices tool.
const Version = "1.0.0"
