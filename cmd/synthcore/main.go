// Command synthcore is the offline command-line front end for the
// synthesis engine: render a single note or a standard MIDI file to a
// WAV file, inspect a SoundFont, list the registered generator
// families, or render a YAML patch graph (SPEC_FULL §0).
package main

func main() {
	Execute()
}
