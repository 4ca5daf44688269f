package constants

import "os"

const (
	StoreDirEnv       = "ENGRAVER_STORE_DIR"
	DynamoEndpointEnv = "ENGRAVER_DYNAMO_ENDPOINT"
	DebugLogEnv       = "ENGRAVER_DEBUG_LOG"
)

func GetStoreDir() string {
	path := os.Getenv(StoreDirEnv)
	if path != "" {
		return path
	}
	return "./out"
}

// GetDynamoEndpoint returns "" when song metadata should not go to
// DynamoDB.
func GetDynamoEndpoint() string {
	return os.Getenv(DynamoEndpointEnv)
}

func GetDebugLog() string {
	return os.Getenv(DebugLogEnv)
}

const (
	SongExt       = ".dat"
	IndexFilename = "index.dat"

	DefaultTable  = "engraver-metadata"
	DefaultRegion = "localhost"
	DefaultAddr   = ":8080"

	// BatchGetLimit is the most keys DynamoDB accepts in one BatchGetItem.
	BatchGetLimit = 100
)
