package web

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/maidenless/sl2edit/save"
	"github.com/maidenless/sl2edit/webutils"
)

type slotInfo struct {
	Index         int    `json:"index"`
	Active        bool   `json:"active"`
	Name          string `json:"name"`
	Level         int32  `json:"level"`
	SecondsPlayed int32  `json:"secondsPlayed"`
}

func newSlotInfo(s *save.Slot) slotInfo {
	return slotInfo{
		Index:         s.Index,
		Active:        s.Active,
		Name:          s.Summary.CharacterName,
		Level:         s.Summary.CharacterLevel,
		SecondsPlayed: s.Summary.SecondsPlayed,
	}
}

func loadSlots() ([]save.Slot, []byte, error) {
	c, err := save.LoadContainer(ContainerPath)
	if err != nil {
		return nil, nil, err
	}
	slots, err := save.Slots(c)
	if err != nil {
		return nil, nil, err
	}
	return slots, c.Buf(), nil
}

func slotFromRequest(r *http.Request, key string) (int, error) {
	index, err := strconv.Atoi(mux.Vars(r)[key])
	if err != nil {
		return 0, fmt.Errorf("slot %q is not an integer", mux.Vars(r)[key])
	}
	return index, nil
}

func HandlerSlots(w http.ResponseWriter, r *http.Request) {
	slots, _, err := loadSlots()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	infos := make([]slotInfo, 0, len(slots))
	for i := range slots {
		infos = append(infos, newSlotInfo(&slots[i]))
	}
	webutils.WriteJson(w, infos)
}

func HandlerSlot(w http.ResponseWriter, r *http.Request) {
	index, err := slotFromRequest(r, "index")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	slots, _, err := loadSlots()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	slot := save.FindSlot(slots, index)
	if slot == nil {
		webutils.WriteError(w, fmt.Errorf("no slot %d", index))
		return
	}
	webutils.WriteJson(w, newSlotInfo(slot))
}

func HandlerStats(w http.ResponseWriter, r *http.Request) {
	index, err := slotFromRequest(r, "index")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	_, buf, err := loadSlots()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	stats, err := save.GetStats(buf, index)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, stats)
}

func HandlerCopySlot(w http.ResponseWriter, r *http.Request) {
	src, err := slotFromRequest(r, "src")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	dst, err := slotFromRequest(r, "dst")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	slots, buf, err := loadSlots()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	srcSlot := save.FindSlot(slots, src)
	if srcSlot == nil {
		webutils.WriteError(w, fmt.Errorf("no slot %d", src))
		return
	}

	out, err := save.CopySlot(*srcSlot, buf, dst)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	if err := save.WriteContainerAtomically(ContainerPath, out); err != nil {
		webutils.WriteError(w, err)
		return
	}
	log.Printf("[web] Copied slot %d to %d", src, dst)
	webutils.WriteJson(w, map[string]bool{"ok": true})
}

type setStatsRequest struct {
	Attributes       save.Attributes `json:"attributes"`
	GodMode          bool            `json:"godMode"`
	CustomAttributes bool            `json:"customAttributes"`
}

func HandlerSetStats(w http.ResponseWriter, r *http.Request) {
	index, err := slotFromRequest(r, "index")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	var req setStatsRequest
	if err := webutils.ReadJsonBody(r, &req); err != nil {
		webutils.WriteError(w, err)
		return
	}

	_, buf, err := loadSlots()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	out, err := save.SetStats(buf, index, req.Attributes, save.StatsOptions{
		GodMode:          req.GodMode,
		CustomAttributes: req.CustomAttributes,
	})
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	if err := save.WriteContainerAtomically(ContainerPath, out); err != nil {
		webutils.WriteError(w, err)
		return
	}
	log.Printf("[web] Updated stats of slot %d", index)
	webutils.WriteJson(w, map[string]bool{"ok": true})
}

func HandlerExportSlot(w http.ResponseWriter, r *http.Request) {
	index, err := slotFromRequest(r, "index")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	slots, _, err := loadSlots()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	slot := save.FindSlot(slots, index)
	if slot == nil {
		webutils.WriteError(w, fmt.Errorf("no slot %d", index))
		return
	}

	blob, info, err := save.ExtractSlot(*slot)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	log.Printf("[web] Exported slot %d: %d -> %d bytes (%.1f%%)",
		index, info.RawSize, info.CompressedSize, info.Ratio()*100)
	webutils.WriteBlob(w, blob, fmt.Sprintf("%s%02d.slot", save.EntryNamePrefix, index))
}

func HandlerImportSlot(w http.ResponseWriter, r *http.Request) {
	index, err := slotFromRequest(r, "index")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	blob, err := webutils.ReadFormFile(r, "slot")
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	slot, err := save.ImportSlot(blob)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	_, buf, err := loadSlots()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	out, err := save.CopySlot(slot, buf, index)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	if err := save.WriteContainerAtomically(ContainerPath, out); err != nil {
		webutils.WriteError(w, err)
		return
	}
	log.Printf("[web] Imported %q into slot %d", slot.Summary.CharacterName, index)
	webutils.WriteJson(w, newSlotInfo(&slot))
}
