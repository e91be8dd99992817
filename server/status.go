package main

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

var startedAt = time.Now()

// status is an unauthenticated liveness snapshot: uptime plus host CPU,
// memory and disk usage.
func (s *server) status(c fiber.Ctx) error {
	out := fiber.Map{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(startedAt).Seconds()),
	}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		out["cpu_percent"] = pct[0]
	}
	if m, err := mem.VirtualMemory(); err == nil {
		out["memory_total"] = m.Total
		out["memory_used"] = m.Used
		out["memory_percent"] = m.UsedPercent
	}
	if d, err := disk.Usage("/"); err == nil {
		out["disk_total"] = d.Total
		out["disk_free"] = d.Free
		out["disk_percent"] = d.UsedPercent
	}
	return c.JSON(out)
}
