package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/pflag"

	"github.com/treefs/treefs"
	"github.com/treefs/treefs/config"
	"github.com/treefs/treefs/internal/util"
	"github.com/treefs/treefs/requests"
	"github.com/treefs/treefs/sources"
	"github.com/treefs/treefs/vfs"
)

// Top-level directories of a Unix-like hierarchy, created on startup
var unixDirs = []string{
	"/bin", "/boot", "/dev", "/etc", "/home", "/lib", "/media",
	"/mnt", "/opt", "/sbin", "/srv", "/tmp", "/usr", "/proc",
}

func main() {
	var (
		configPath string
		nodesDef   string
		verbose    int
	)
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file (yaml or json)")
	pflag.StringVarP(&nodesDef, "nodes", "n", "", "Path to nodes def file")
	pflag.IntVarP(&verbose, "verbose", "v", 3,
		"Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	pflag.Parse()

	logLvl := util.LevelFromVerbosity(verbose)
	util.InitializeLogger(logLvl)
	logger := util.GetLogger("main")

	// Register all built-in content sources
	sources.RegisterBuiltins()

	cfg := config.NewConfig(&config.ConfigOverride{LogLvl: &verbose})
	if configPath != "" {
		override, err := config.LoadConfigOverrideFile(configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config file")
		}
		cfg.Merge(override)
	}

	fs := vfs.New(cfg)

	// Linux-like file hierarchy
	for _, dir := range unixDirs {
		if _, err := fs.CreateDir(dir, false); err != nil {
			logger.Fatal().Err(err).Str("path", dir).Msg("Failed to create directory")
		}
	}

	if nodesDef != "" {
		applyNodesDef(fs, nodesDef)
	} else {
		logger.Debug().Msg("No nodes def file provided")
	}

	// Stream a file in and read it back line by line
	stream, err := fs.Open("/tmp/motd.txt", treefs.ModeRW)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open file")
	}
	if _, err := stream.WriteLine("Welcome to treefs."); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write file")
	}
	if _, err := stream.WriteLine("Everything here lives in memory."); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write file")
	}
	for !stream.IsEOF() {
		logger.Info().Str("file", stream.Name()).Str("line", stream.ReadLine()).Msg("Read line")
	}

	if err := fs.WriteTree(os.Stdout, "/"); err != nil {
		logger.Fatal().Err(err).Msg("Failed to print tree")
	}
	logger.Info().Int64("bytes_used", fs.BytesUsed()).Msg("Done")
}

// applyNodesDef loads a JSON array of node definitions and adds each to the
// filesystem, directories before files so explicit dir attributes win over
// force-created ancestors
func applyNodesDef(fs treefs.TreeOperator, nodesDef string) {
	logger := util.GetLogger("main")

	defData, err := os.ReadFile(nodesDef)
	if err != nil {
		logger.Fatal().Err(err).Str("nodes", nodesDef).Msg("Failed to read nodes def file")
	}
	var rawNodes []json.RawMessage
	if err := json.Unmarshal(defData, &rawNodes); err != nil {
		logger.Fatal().Err(err).Str("nodes", nodesDef).Msg("Failed to unmarshal nodes def")
	}

	var fileRequests []*treefs.FileCreateRequest
	var dirRequests []*treefs.DirCreateRequest

	for _, rawNode := range rawNodes {
		nodeType, err := requests.GetNodeType(rawNode)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to get node type")
			continue
		}

		switch nodeType {
		case treefs.FileNodeType:
			fileReq, err := requests.UnmarshalFileRequest(rawNode)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to unmarshal file request")
				continue
			}
			fileRequests = append(fileRequests, fileReq)

		case treefs.DirNodeType:
			dirReq, err := requests.UnmarshalDirRequest(rawNode)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to unmarshal directory request")
				continue
			}
			dirRequests = append(dirRequests, dirReq)

		default:
			logger.Warn().Str("type", string(nodeType)).Msg("Unknown node type")
		}
	}

	dirAddCnt := 0
	for _, req := range dirRequests {
		if _, err := fs.AddDirNode(req); err != nil {
			logger.Error().Err(err).Str("path", req.Path).Msg("Failed to add directory")
			continue
		}
		dirAddCnt++
	}
	fileAddCnt := 0
	for _, req := range fileRequests {
		if _, err := fs.AddFileNode(req); err != nil {
			logger.Error().Err(err).Str("path", req.Path).Msg("Failed to add file")
			continue
		}
		fileAddCnt++
	}
	logger.Info().Int("directories", dirAddCnt).Int("files", fileAddCnt).Msg("Added nodes from def file")
}
