package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/maidenless/sl2edit/config"
	"github.com/maidenless/sl2edit/save"
	"github.com/maidenless/sl2edit/utils"
)

func formatDuration(seconds int32) string {
	return fmt.Sprintf("%dh %02dm %02ds", seconds/3600, seconds/60%60, seconds%60)
}

func parseSlotPair(s string) (int, int, error) {
	var src, dst int
	if _, err := fmt.Sscanf(s, "%d:%d", &src, &dst); err != nil {
		return 0, 0, fmt.Errorf("expected src:dst, got %q", s)
	}
	return src, dst, nil
}

func parseAttributes(s string) (save.Attributes, error) {
	var attrs save.Attributes
	parts := strings.Split(s, ",")
	if len(parts) != save.AttrCount {
		return attrs, fmt.Errorf("expected %d comma separated attributes, got %d", save.AttrCount, len(parts))
	}
	for i, p := range parts {
		var v int
		if _, err := fmt.Sscanf(strings.TrimSpace(p), "%d", &v); err != nil || v < 0 || v > 255 {
			return attrs, fmt.Errorf("bad attribute %q", p)
		}
		attrs[i] = uint8(v)
	}
	return attrs, nil
}

func main() {
	var inPath, configPath, copyPair, importPath, outPath, setAttrs string
	var listSlots, god, verbose bool
	var exportSlot, statsSlot, targetSlot int

	flag.StringVar(&inPath, "f", "", "Path to save container (.sl2)")
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.BoolVar(&listSlots, "list", false, "List save slots")
	flag.StringVar(&copyPair, "copy", "", "Copy slot src:dst")
	flag.IntVar(&exportSlot, "export", -1, "Export slot to a portable file")
	flag.StringVar(&outPath, "o", "", "Output path for -export")
	flag.StringVar(&importPath, "import", "", "Portable slot file to import")
	flag.IntVar(&targetSlot, "slot", -1, "Target slot for -import")
	flag.IntVar(&statsSlot, "stats", -1, "Print stats of a slot")
	flag.StringVar(&setAttrs, "set-attrs", "", "8 comma separated attributes (with -slot)")
	flag.BoolVar(&god, "god", false, "Force all resource pools to maximum (with -set-attrs)")
	flag.BoolVar(&verbose, "v", false, "Dump parsed structures")
	flag.Parse()

	if configPath != "" {
		if err := config.Load(configPath); err != nil {
			log.Fatal(err)
		}
	}
	if inPath == "" {
		inPath = config.Get().SavePath
	}
	if inPath == "" {
		log.Fatal("Provide path to the save container. Use --help if you stuck.")
	}

	c, err := save.LoadContainer(inPath)
	if err != nil {
		log.Fatal(err)
	}
	slots, err := save.Slots(c)
	if err != nil {
		log.Fatal(err)
	}
	if verbose {
		utils.Dump(c.Header)
	}

	switch {
	case listSlots:
		for i := range slots {
			s := &slots[i]
			active := " "
			if s.Active {
				active = "*"
			}
			fmt.Printf("%s %d: %-34s level %-4d played %s\n",
				active, s.Index, s.Summary.CharacterName, s.Summary.CharacterLevel,
				formatDuration(s.Summary.SecondsPlayed))
		}

	case copyPair != "":
		src, dst, err := parseSlotPair(copyPair)
		if err != nil {
			log.Fatal(err)
		}
		srcSlot := save.FindSlot(slots, src)
		if srcSlot == nil {
			log.Fatalf("No slot %d", src)
		}
		out, err := save.CopySlot(*srcSlot, c.Buf(), dst)
		if err != nil {
			log.Fatal(err)
		}
		if err := save.WriteContainerAtomically(inPath, out); err != nil {
			log.Fatal(err)
		}
		log.Printf("Copied slot %d to %d", src, dst)

	case exportSlot >= 0:
		slot := save.FindSlot(slots, exportSlot)
		if slot == nil {
			log.Fatalf("No slot %d", exportSlot)
		}
		if outPath == "" {
			outPath = fmt.Sprintf("%s%02d.slot", save.EntryNamePrefix, exportSlot)
		}
		blob, info, err := save.ExtractSlot(*slot)
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(outPath, blob, 0644); err != nil {
			log.Fatal(err)
		}
		log.Printf("Exported %q: %d -> %d bytes (%.1f%%)",
			outPath, info.RawSize, info.CompressedSize, info.Ratio()*100)

	case importPath != "":
		if targetSlot < 0 {
			log.Fatal("Provide target slot with -slot")
		}
		blob, err := os.ReadFile(importPath)
		if err != nil {
			log.Fatal(err)
		}
		slot, err := save.ImportSlot(blob)
		if err != nil {
			log.Fatal(err)
		}
		out, err := save.CopySlot(slot, c.Buf(), targetSlot)
		if err != nil {
			log.Fatal(err)
		}
		if err := save.WriteContainerAtomically(inPath, out); err != nil {
			log.Fatal(err)
		}
		log.Printf("Imported %q into slot %d", slot.Summary.CharacterName, targetSlot)

	case setAttrs != "":
		if targetSlot < 0 {
			log.Fatal("Provide target slot with -slot")
		}
		attrs, err := parseAttributes(setAttrs)
		if err != nil {
			log.Fatal(err)
		}
		out, err := save.SetStats(c.Buf(), targetSlot, attrs, save.StatsOptions{
			GodMode:          god,
			CustomAttributes: !god,
		})
		if err != nil {
			log.Fatal(err)
		}
		if err := save.WriteContainerAtomically(inPath, out); err != nil {
			log.Fatal(err)
		}
		log.Printf("Slot %d is now level %d", targetSlot, attrs.Level())

	case statsSlot >= 0:
		stats, err := save.GetStats(c.Buf(), statsSlot)
		if err != nil {
			log.Fatal(err)
		}
		utils.Dump(stats)

	default:
		flag.Usage()
	}
}
