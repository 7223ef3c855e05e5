// Package config loads escaper configuration from escaper.json or
// escaper.yaml.
//
// # Configuration File Structure
//
//	{
//	  "allowedSchemes": ["http", "https", "ftp", "mailto"],
//	  "server": {
//	    "address": ":8080",
//	    "readTimeout": "5s",
//	    "writeTimeout": "10s",
//	    "maxBodyBytes": 1048576
//	  },
//	  "metrics": {"enabled": true, "namespace": "escaper", "path": "/metrics"},
//	  "tracing": {"enabled": false},
//	  "log": {"level": "info", "format": "text"},
//	  "buffer": {"initialSize": 256, "maxSize": 16777216}
//	}
//
// The same keys are used in YAML files. Missing fields take the defaults
// shown above.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	policy, err := cfg.Policy()
//
// A Watcher reloads the file when it changes and hands each valid result to
// its OnChange callback.
package config
