package config

import "os"

func IsDebug() bool {
	return os.Getenv("LECTERN_DEBUG") == "1"
}
