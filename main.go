package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ecopia-map/cloud_colorizer/internal/colorizer"
	"github.com/ecopia-map/cloud_colorizer/pkg"
	"github.com/ecopia-map/cloud_colorizer/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/cloud_colorizer/tools"
	"github.com/golang/glog"
)

const VERSION = "1.0.0"

const logo = `
      _                 _              _            _
  ___| | ___  _   _  __| |   ___ ___ | | ___  _ __(_)_______ _ __
 / __| |/ _ \| | | |/ _  |  / __/ _ \| |/ _ \| '__| |_  / _ \ '__|
| (__| | (_) | |_| | (_| | | (_| (_) | | (_) | |  | |/ /  __/ |
 \___|_|\___/ \__,_|\__,_|  \___\___/|_|\___/|_|  |_/___\___|_|
  Colors a LAS point cloud from georeferenced RGB tiles
`

func main() {
	defer glog.Flush()

	flagsGlobal := tools.ParseFlagsGlobal()
	glog.V(1).Infoln(tools.FmtJSONString(flagsGlobal))

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		glog.Fatal("Please specify a subcommand [colorize|inspect|tiles].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case colorizer.CommandColorize:
		mainCommandColorize(args)
	case colorizer.CommandInspect:
		mainCommandInspect(args)
	case colorizer.CommandTiles:
		mainCommandTiles(args)
	default:
		glog.Fatalf("Unrecognized command [%q]. Command must be one of [colorize|inspect|tiles]", cmd)
	}
}

func mainCommandColorize(args []string) {
	// Retrieve command line args
	flags := tools.ParseFlagsForCommandColorize(args)

	// Prints the command line flag description
	if *flags.Help {
		showHelp()
		return
	}
	if *flags.Version {
		printVersion()
		return
	}

	// set logging and timestamp logging
	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if !*flags.LogTimestamp {
		tools.DisableLoggerTimestamp()
	}

	fallbackColor, err := colorizer.ParseColor(*flags.FallbackColor)
	if err != nil {
		glog.Fatal("Error parsing input parameters: ", err)
	}

	// Put args inside a ColorizerOptions struct
	opts := colorizer.NewColorizerOptions()
	opts.Input = *flags.Input
	opts.Rasters = append([]string(nil), *flags.Rasters...)
	opts.RasterFolder = *flags.RasterFolder
	opts.Recursive = *flags.Recursive
	opts.TilePriority = colorizer.SplitList(*flags.TilePriority)
	opts.Stride = *flags.Stride
	opts.Output = *flags.Output
	opts.Workers = *flags.Workers
	opts.FallbackColor = fallbackColor
	opts.Manifest = *flags.Manifest
	opts.CoveragePlot = *flags.CoveragePlot
	opts.LasOutput = *flags.LasOutput
	opts.Proj = *flags.Proj

	if *flags.Config != "" {
		cfg, err := colorizer.LoadConfig(*flags.Config)
		if err != nil {
			glog.Fatal("Error loading configuration: ", err)
		}
		cfg.Apply(opts, flags.SetFlags)
	}

	// Validate ColorizerOptions
	if msg, res := validateOptionsForCommandColorize(opts); !res {
		glog.Fatal("Error parsing input parameters: " + msg)
	}
	glog.Infoln(tools.FmtJSONString(opts))

	// Starts the colorizer
	defer timeTrack(time.Now(), "colorize")
	err = pkg.NewColorizer(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts)).Run(opts)

	if err != nil {
		glog.Fatal("Error while colorizing: ", err)
	} else {
		tools.LogOutput("Colorization Completed")
	}
}

// Validates the input options provided to the command line tool checking
// that the input file and the raster folder exist
func validateOptionsForCommandColorize(opts *colorizer.ColorizerOptions) (string, bool) {
	if err := opts.Validate(); err != nil {
		return err.Error(), false
	}
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		return "Input file not found", false
	}
	if opts.RasterFolder != "" {
		if info, err := os.Stat(opts.RasterFolder); err != nil || !info.IsDir() {
			return "Raster folder not found", false
		}
	}

	return "", true
}

func mainCommandInspect(args []string) {
	flags := tools.ParseFlagsForCommandInspect(args)

	if *flags.Help {
		showHelp()
		return
	}

	fallbackColor, err := colorizer.ParseColor(*flags.FallbackColor)
	if err != nil {
		glog.Fatal("Error parsing input parameters: ", err)
	}

	opts := colorizer.NewColorizerOptions()
	opts.Command = colorizer.CommandInspect
	opts.FallbackColor = fallbackColor
	opts.InspectOptions = &colorizer.InspectOptions{
		Input: *flags.Input,
	}

	if opts.InspectOptions.Input == "" {
		glog.Fatal("Error parsing input parameters: input buffer is required")
	}

	if err := pkg.NewInspector().Run(opts); err != nil {
		glog.Fatal("Error while inspecting: ", err)
	}
}

func mainCommandTiles(args []string) {
	flags := tools.ParseFlagsForCommandTiles(args)

	if *flags.Help {
		showHelp()
		return
	}

	opts := colorizer.NewColorizerOptions()
	opts.Command = colorizer.CommandTiles
	opts.Rasters = append([]string(nil), *flags.Rasters...)
	opts.RasterFolder = *flags.RasterFolder
	opts.Recursive = *flags.Recursive
	opts.TilePriority = colorizer.SplitList(*flags.TilePriority)

	if err := pkg.NewTileLister(tools.NewStandardFileFinder()).Run(opts); err != nil {
		glog.Fatal("Error while listing tiles: ", err)
	}
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.TrimPrefix(logo, "\n"))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("cloud_colorizer decimates a LAS point cloud, colors every point from the first georeferenced tile containing it")
	fmt.Println("and writes a headerless buffer of float32 positions followed by RGB bytes.")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Usage: cloud_colorizer [colorize|inspect|tiles] [flags], run a subcommand with -h to list its flags")
	fmt.Println("")
	fmt.Println("Global flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
