// Command gxtool round-trips a GX display-list byte stream through the
// lifter and lowerer and dumps the GLSL a material would compile to.
//
// Usage:
//
//	gxtool -in packet.bin [-out out.bin] [-glsl]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/gxcodec/dlist"
	"github.com/gogpu/gxcodec/glsl"
	"github.com/gogpu/gxcodec/gxlog"
	"github.com/gogpu/gxcodec/lift"
	"github.com/gogpu/gxcodec/lower"
)

var (
	inFile   = flag.String("in", "", "path to a raw BP/CP/XF display-list byte stream")
	outFile  = flag.String("out", "", "if set, write the re-lowered byte stream here")
	dumpGLSL = flag.Bool("glsl", false, "print the generated vertex/fragment GLSL")
	verbose  = flag.Bool("v", false, "enable debug logging")
)

func main() {
	flag.Parse()
	if *inFile == "" {
		fmt.Fprintln(os.Stderr, "gxtool: -in is required")
		os.Exit(1)
	}

	if *verbose {
		gxlog.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gxtool: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	data, err := os.ReadFile(*inFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *inFile, err)
	}

	cmds, err := dlist.Read(data, len(data), func(uint8, uint16) (int, error) { return 0, nil })
	if err != nil {
		return fmt.Errorf("parsing display list: %w", err)
	}
	fmt.Printf("gxtool: parsed %d commands from %d bytes\n", len(cmds), len(data))

	state, warnings := lift.Replay(cmds)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "gxtool: replay warning: %s\n", w)
	}

	mat, liftWarnings, err := lift.Lift(state)
	if err != nil {
		return fmt.Errorf("lifting material: %w", err)
	}
	for _, w := range liftWarnings {
		fmt.Fprintf(os.Stderr, "gxtool: lift warning: %s\n", w)
	}
	fmt.Printf("gxtool: lifted material with %d TEV stage(s), %d texgen(s)\n", len(mat.Stages), len(mat.TexGens))

	lowered, err := lower.Lower(mat)
	if err != nil {
		return fmt.Errorf("lowering material: %w", err)
	}
	fmt.Printf("gxtool: re-lowered to %d bytes\n", len(lowered))

	if *outFile != "" {
		if err := os.WriteFile(*outFile, lowered, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", *outFile, err)
		}
	}

	if *dumpGLSL {
		shaders, err := glsl.Generate(mat, glsl.ProfileGL420, glsl.Options{})
		if err != nil {
			return fmt.Errorf("generating GLSL: %w", err)
		}
		fmt.Println("=== vertex ===")
		fmt.Println(shaders.Vertex)
		fmt.Println("=== fragment ===")
		fmt.Println(shaders.Fragment)
	}

	return nil
}
