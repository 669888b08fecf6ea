package mods

// Config holds configuration for the package store.
type Config struct {
	// Directory is the base folder that holds one sub-folder per package.
	Directory string `mapstructure:"directory" default:"./mods"`
	// Workers bounds how many folders are loaded in parallel.
	Workers int `mapstructure:"workers" default:"4"`
}
