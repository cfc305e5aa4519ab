package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qaztriage/backend/internal/models"
	"github.com/qaztriage/backend/internal/service"
)

type ImportSummary struct {
	Tickets struct {
		Parsed   int `json:"parsed"`
		Inserted int `json:"inserted"`
		Errors   int `json:"errors"`
	} `json:"tickets"`
	Managers struct {
		Parsed   int `json:"parsed"`
		Inserted int `json:"inserted"`
		Errors   int `json:"errors"`
	} `json:"managers"`
	BusinessUnits struct {
		Parsed   int `json:"parsed"`
		Inserted int `json:"inserted"`
		Errors   int `json:"errors"`
	} `json:"business_units"`
	Errors []string `json:"errors"`
}

func validateExt(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".csv")
}

func openCSV(fh *multipart.FileHeader) (*csv.Reader, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r, f, nil
}

// headerIndex maps column names to positions; matching is case-insensitive
// and tolerates a UTF-8 BOM on the first column.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	return idx
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseTicketsCSV(fh *multipart.FileHeader) ([]models.Ticket, []string) {
	r, closer, err := openCSV(fh)
	if err != nil {
		return nil, []string{fmt.Sprintf("tickets: %v", err)}
	}
	defer closer.Close()

	header, err := r.Read()
	if err != nil {
		return nil, []string{fmt.Sprintf("tickets: read header: %v", err)}
	}
	idx := headerIndex(header)

	var tickets []models.Ticket
	var errs []string
	seen := map[string]bool{}
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Sprintf("tickets line %d: %v", line, err))
			continue
		}
		id := field(record, idx, "id")
		if id == "" {
			errs = append(errs, fmt.Sprintf("tickets line %d: id is required", line))
			continue
		}
		if seen[id] {
			errs = append(errs, fmt.Sprintf("tickets line %d: duplicate id %s", line, id))
			continue
		}
		seen[id] = true

		createdAt := time.Now().UTC()
		if raw := field(record, idx, "created_at"); raw != "" {
			if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
				createdAt = parsed
			}
		}

		tickets = append(tickets, models.Ticket{
			ID:          id,
			CreatedAt:   createdAt,
			Segment:     field(record, idx, "segment"),
			Country:     field(record, idx, "country"),
			Region:      field(record, idx, "region"),
			Settlement:  field(record, idx, "settlement"),
			Street:      field(record, idx, "street"),
			House:       field(record, idx, "house"),
			Description: field(record, idx, "description"),
			Attachments: field(record, idx, "attachments"),
		})
	}
	return tickets, errs
}

func parseManagersCSV(fh *multipart.FileHeader) ([]models.Manager, []string) {
	r, closer, err := openCSV(fh)
	if err != nil {
		return nil, []string{fmt.Sprintf("managers: %v", err)}
	}
	defer closer.Close()

	header, err := r.Read()
	if err != nil {
		return nil, []string{fmt.Sprintf("managers: read header: %v", err)}
	}
	idx := headerIndex(header)

	var managers []models.Manager
	var errs []string
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Sprintf("managers line %d: %v", line, err))
			continue
		}
		id := field(record, idx, "id")
		name := field(record, idx, "name")
		if id == "" || name == "" {
			errs = append(errs, fmt.Sprintf("managers line %d: id and name are required", line))
			continue
		}

		load := 0
		if raw := field(record, idx, "current_load"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
				load = parsed
			}
		}

		var skills []string
		for _, s := range strings.Split(field(record, idx, "skills"), ";") {
			if v := strings.TrimSpace(s); v != "" {
				skills = append(skills, v)
			}
		}

		managers = append(managers, models.Manager{
			ID:          id,
			Name:        name,
			Office:      field(record, idx, "office"),
			Role:        field(record, idx, "role"),
			Skills:      skills,
			CurrentLoad: load,
			UpdatedAt:   time.Now().UTC(),
		})
	}
	return managers, errs
}

func parseBusinessUnitsCSV(fh *multipart.FileHeader) ([]models.BusinessUnit, []string) {
	r, closer, err := openCSV(fh)
	if err != nil {
		return nil, []string{fmt.Sprintf("business_units: %v", err)}
	}
	defer closer.Close()

	header, err := r.Read()
	if err != nil {
		return nil, []string{fmt.Sprintf("business_units: read header: %v", err)}
	}
	idx := headerIndex(header)

	var units []models.BusinessUnit
	var errs []string
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Sprintf("business_units line %d: %v", line, err))
			continue
		}
		id := field(record, idx, "id")
		name := field(record, idx, "name")
		if id == "" || name == "" {
			errs = append(errs, fmt.Sprintf("business_units line %d: id and name are required", line))
			continue
		}
		units = append(units, models.BusinessUnit{
			ID:      id,
			Name:    name,
			Address: field(record, idx, "address"),
		})
	}
	return units, errs
}

func marshalSummary(summary service.RunSummary) []byte {
	b, _ := json.Marshal(summary)
	return b
}

func writeError(c *gin.Context, status int, code, message string, details any) {
	body := gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
	if details != nil {
		body["error"].(gin.H)["details"] = details
	}
	c.JSON(status, body)
}
