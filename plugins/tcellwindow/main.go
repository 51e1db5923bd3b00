// Command tcellwindow is built with -buildmode=plugin and dropped into the
// plugin directory to provide the terminal window backend:
//
//	go build -buildmode=plugin -o bin/plugins/tcellwindow.so ./plugins/tcellwindow
package main

import (
	"github.com/specialistvlad/kiln/internal/backend"
	"github.com/specialistvlad/kiln/internal/version"
	"github.com/specialistvlad/kiln/internal/window"
	"github.com/specialistvlad/kiln/internal/window/tcellwin"
)

func GetName() string        { return tcellwin.Name }
func GetAuthor() string      { return "kiln" }
func GetDescription() string { return "Renders into the controlling terminal using tcell." }

func GetVersion() version.Version { return version.New(0, 1, 0) }
func GetType() backend.Type       { return backend.Window }

func GetFactory() window.Factory { return tcellwin.Factory }

func main() {}
