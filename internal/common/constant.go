package common

// MetadataKeyLastSync is the metadata slot holding the timestamp of the
// last successful pull from the remote gateway (epoch milliseconds).
const MetadataKeyLastSync = "lastSync"
