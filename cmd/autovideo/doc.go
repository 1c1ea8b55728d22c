// Command autovideo converts videos into in-game animated textures.
//
//	autovideo convert --mod "VHS Tapes" intro.mp4 outro.mkv
//	autovideo check
//	autovideo history
//	autovideo script --mod "VHS Tapes"
//	autovideo config init
package main
