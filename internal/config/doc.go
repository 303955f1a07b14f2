// Package config provides configuration parsing for btp.
//
// The configuration is stored in btp.json in the working directory or one of
// its parents. This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "proxy": {
//	    "listen": "127.0.0.1:8088",
//	    "upstream": "http://localhost:5000",
//	    "apiPrefix": "/_btp",
//	    "maxBodySize": 4194304
//	  },
//	  "scope": ["localhost", "*.example.com"],
//	  "preferences": {
//	    "useWebSocket": false
//	  },
//	  "archive": {
//	    "backend": "disk",
//	    "dir": "captures",
//	    "ratePerSecond": 20,
//	    "burst": 40
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "btp"
//	  },
//	  "tracing": {
//	    "tracerName": "btp"
//	  },
//	  "codec": {
//	    "maxFrameSize": 4194304
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Upstream:", cfg.Proxy.Upstream)
package config
