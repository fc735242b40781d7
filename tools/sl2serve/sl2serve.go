package main

import (
	"flag"
	"log"

	"github.com/maidenless/sl2edit/config"
	"github.com/maidenless/sl2edit/save"
	"github.com/maidenless/sl2edit/watch"
	"github.com/maidenless/sl2edit/web"
)

func main() {
	var savePath, backupDir, listenAddr, configPath string
	flag.StringVar(&savePath, "f", "", "Path to save container (.sl2)")
	flag.StringVar(&backupDir, "backups", "", "Directory for automatic backups")
	flag.StringVar(&listenAddr, "listen", "", "Listen address")
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.Parse()

	if configPath != "" {
		if err := config.Load(configPath); err != nil {
			log.Fatal(err)
		}
	}
	if savePath != "" {
		config.SetSavePath(savePath)
	}
	if backupDir != "" {
		config.SetBackupDir(backupDir)
	}
	cfg := config.Get()
	if listenAddr == "" {
		listenAddr = cfg.ListenAddr
	}
	if cfg.SavePath == "" {
		log.Fatal("Provide path to the save container. Use --help if you stuck.")
	}

	// Fail early on an unreadable or foreign file.
	if _, err := save.LoadContainer(cfg.SavePath); err != nil {
		log.Fatal(err)
	}

	var w *watch.Watcher
	if cfg.BackupDir != "" {
		w = watch.New(cfg.SavePath, cfg.BackupDir)
		if err := w.Start(); err != nil {
			log.Fatal(err)
		}
		defer w.Stop()
	}

	if err := web.StartServer(listenAddr, cfg.SavePath, w); err != nil {
		log.Fatal(err)
	}
}
