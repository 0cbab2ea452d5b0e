package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Pseudo-Game-Tech/TextureToolPlugin/config"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/editor"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/registry"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/vfs"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/web"
	"github.com/Pseudo-Game-Tech/TextureToolPlugin/world"
)

type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

const tickInterval = 50 * time.Millisecond

func main() {
	var addr, content, level, settingsPath, webPath string
	var sublevels stringList
	var watch bool
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&content, "content", "", "Path to content directory, mounted as /Game")
	flag.StringVar(&level, "world", "", "Path to persistent level (.gltf/.glb)")
	flag.Var(&sublevels, "sublevel", "Path to streamed level, can be repeated")
	flag.StringVar(&settingsPath, "settings", "texture_tool.yaml", "Merge settings file")
	flag.StringVar(&webPath, "web", "web", "Directory with web ui data")
	flag.BoolVar(&watch, "watch", true, "Rescan content directory on changes")
	flag.Parse()

	if content == "" {
		flag.PrintDefaults()
		return
	}

	reg := registry.New(vfs.NewDirectoryDriver(content))
	if err := reg.Scan(); err != nil {
		log.Fatal(err)
	}
	if watch {
		if err := reg.Watch(); err != nil {
			log.Printf("[main] Watching content disabled: %v", err)
		}
	}
	defer reg.Close()

	var w *world.World
	if level != "" {
		var err error
		if w, err = world.Load(content, level, sublevels); err != nil {
			log.Fatal(err)
		}
	} else if len(sublevels) != 0 {
		log.Fatal("[main] -sublevel needs -world")
	}

	settings := config.NewSettings()
	if _, err := os.Stat(settingsPath); err == nil {
		if settings, err = config.LoadSettings(settingsPath); err != nil {
			log.Fatal(err)
		}
	}

	s, err := editor.NewSession(editor.Options{
		Registry:     reg,
		World:        w,
		Settings:     settings,
		SettingsPath: settingsPath,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	go func() {
		for range time.Tick(tickInterval) {
			web.SessionLock.Lock()
			s.Tick()
			web.SessionLock.Unlock()
		}
	}()

	if err := web.StartServer(addr, s, webPath); err != nil {
		log.Fatal(err)
	}
}
