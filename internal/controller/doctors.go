package controller

import (
	"context"
	"fmt"
	"strconv"
)

const doctorPlaceholder = "-- Select a Doctor --"

// LoadDoctors refreshes the doctor list and picker. No token needed.
func (c *Controller) LoadDoctors(ctx context.Context, specialty string) {
	c.loadDoctors(ctx, specialty)
	c.draw()
}

// loadDoctors replaces both the list and the picker on success. On failure
// only the list shows the error; the picker keeps its previous options.
func (c *Controller) loadDoctors(ctx context.Context, specialty string) {
	docs, err := c.api.ListDoctors(ctx, specialty)
	if err != nil {
		text := "Could not fetch doctors."
		if !isAPIError(err) {
			text = errorText(err)
		}
		c.update(func(s *State) {
			s.Doctors = nil
			s.DoctorsText = text
		})
		return
	}

	lines := make([]string, 0, len(docs))
	opts := make([]Option, 0, len(docs)+1)
	opts = append(opts, Option{Value: "", Label: doctorPlaceholder})
	for _, d := range docs {
		lines = append(lines, fmt.Sprintf("%s (%s)", d.FullName, d.Specialty))
		opts = append(opts, Option{
			Value: strconv.FormatInt(d.ID, 10),
			Label: fmt.Sprintf("%s - %s", d.FullName, d.Specialty),
		})
	}
	c.update(func(s *State) {
		s.Doctors = lines
		s.DoctorsText = ""
		s.DoctorOptions = opts
	})
}
