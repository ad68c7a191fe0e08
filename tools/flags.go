package tools

import (
	"flag"
	"strings"

	"github.com/golang/glog"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

// StringList is a flag that can be repeated, each occurrence appends a value
type StringList []string

func (s *StringList) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *StringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type RasterFlags struct {
	Rasters      *StringList `json:"raster"`
	RasterFolder *string     `json:"raster_folder"`
	Recursive    *bool       `json:"recursive"`
	TilePriority *string     `json:"tile_priority"`
}

type FlagsForCommandColorize struct {
	RasterFlags
	Input         *string
	Output        *string
	Stride        *int
	Workers       *int
	FallbackColor *string
	Manifest      *string
	CoveragePlot  *string
	LasOutput     *string
	Proj          *string
	Config        *string
	Silent        *bool
	LogTimestamp  *bool
	Help          *bool
	Version       *bool
	SetFlags      map[string]bool // long names of the flags given on the command line
}

type FlagsForCommandInspect struct {
	Input         *string
	FallbackColor *string
	Help          *bool
}

type FlagsForCommandTiles struct {
	RasterFlags
	Help *bool
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	// -v belongs to glog verbosity on the global flag set
	version := defineBoolFlag("version", "", false, "Displays the version of cloud_colorizer.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func defineRasterFlags(flagCommand *flag.FlagSet) RasterFlags {
	rasters := &StringList{}
	flagCommand.Var(rasters, "raster", "Georeferenced RGB tile (GeoTIFF, or PNG/JPEG/TIFF with a world file). Repeat the flag for every tile, the order is the overlap priority.")
	flagCommand.Var(rasters, "r", "Georeferenced RGB tile (shorthand for raster)")

	return RasterFlags{
		Rasters:      rasters,
		RasterFolder: defineStringFlagCommand(flagCommand, "raster-folder", "f", "", "Folder whose rasters are appended to the -raster list, sorted by name."),
		Recursive:    defineBoolFlagCommand(flagCommand, "recursive", "R", false, "Enables recursive lookup of rasters inside the subfolders of -raster-folder."),
		TilePriority: defineStringFlagCommand(flagCommand, "tile-priority", "p", "", "Comma separated tile order used when tiles overlap, the first tile wins. Names every raster once, by path or file name. Defaults to the raster order."),
	}
}

func ParseFlagsForCommandColorize(args []string) FlagsForCommandColorize {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-colorize", flag.ExitOnError)

	rasterFlags := defineRasterFlags(flagCommand)
	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the input las file.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output binary buffer.")
	stride := defineIntFlagCommand(flagCommand, "stride", "k", 2, "Keeps one point every stride points.")
	workers := defineIntFlagCommand(flagCommand, "workers", "w", 0, "Number of color resolution workers. 0 uses one per CPU.")
	fallbackColor := defineStringFlagCommand(flagCommand, "fallback-color", "", "128,128,128", "r,g,b color of the points outside every tile.")
	manifest := defineStringFlagCommand(flagCommand, "manifest", "m", "", "Optional JSON manifest describing the output buffer.")
	coveragePlot := defineStringFlagCommand(flagCommand, "coverage-plot", "", "", "Optional PNG plot of the points over the tile footprints.")
	lasOutput := defineStringFlagCommand(flagCommand, "las-out", "", "", "Optional LAS export of the decimated points.")
	proj := defineStringFlagCommand(flagCommand, "proj", "", "", "Optional proj4 definition of the input CRS, used to report the WGS84 region in the manifest.")
	config := defineStringFlagCommand(flagCommand, "config", "c", "", "Optional JSON file with the options, flags given on the command line take precedence.")
	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")
	version := defineBoolFlagCommand(flagCommand, "version", "v", false, "Displays the version of cloud_colorizer.")

	flagCommand.Parse(args)

	return FlagsForCommandColorize{
		RasterFlags:   rasterFlags,
		Input:         input,
		Output:        output,
		Stride:        stride,
		Workers:       workers,
		FallbackColor: fallbackColor,
		Manifest:      manifest,
		CoveragePlot:  coveragePlot,
		LasOutput:     lasOutput,
		Proj:          proj,
		Config:        config,
		Silent:        silent,
		LogTimestamp:  logTimestamp,
		Help:          help,
		Version:       version,
		SetFlags:      setFlags(flagCommand),
	}
}

func ParseFlagsForCommandInspect(args []string) FlagsForCommandInspect {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-inspect", flag.ExitOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the binary buffer to inspect.")
	fallbackColor := defineStringFlagCommand(flagCommand, "fallback-color", "", "128,128,128", "r,g,b color counted as uncovered.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")

	flagCommand.Parse(args)

	return FlagsForCommandInspect{
		Input:         input,
		FallbackColor: fallbackColor,
		Help:          help,
	}
}

func ParseFlagsForCommandTiles(args []string) FlagsForCommandTiles {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-tiles", flag.ExitOnError)

	rasterFlags := defineRasterFlags(flagCommand)
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")

	flagCommand.Parse(args)

	return FlagsForCommandTiles{
		RasterFlags: rasterFlags,
		Help:        help,
	}
}

// setFlags returns the long names of the flags given on the command line. Long names and their
// shorthand share the same Value, so a shorthand marks its long name as set too.
func setFlags(flagCommand *flag.FlagSet) map[string]bool {
	var given []flag.Value
	flagCommand.Visit(func(f *flag.Flag) {
		given = append(given, f.Value)
	})

	set := make(map[string]bool)
	flagCommand.VisitAll(func(f *flag.Flag) {
		for _, v := range given {
			if v == f.Value {
				set[f.Name] = true
			}
		}
	})
	return set
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
