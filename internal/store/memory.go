package store

import (
	"context"
	"sort"
	"sync"

	"hospital-booking/internal/model"
)

// Memory is an in-process store with the same semantics as Store. The server
// uses it when STORE_BACKEND=memory; nothing survives a restart.
type Memory struct {
	mu           sync.Mutex
	nextID       int64
	users        map[int64]model.User
	doctors      map[int64]model.Doctor
	appointments map[int64]model.Appointment
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[int64]model.User),
		doctors:      make(map[int64]model.Doctor),
		appointments: make(map[int64]model.Appointment),
	}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == u.Email || x.Username == u.Username {
			return ErrConflict
		}
	}
	u.ID = m.id()
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) UserExists(_ context.Context, email, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == email || x.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == email {
			u := x
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

// AddDoctor inserts d and returns it with its id set.
func (m *Memory) AddDoctor(d model.Doctor) model.Doctor {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.id()
	m.doctors[d.ID] = d
	return d
}

func (m *Memory) SeedDoctors(_ context.Context) (int, error) {
	for _, d := range DemoDoctors {
		m.AddDoctor(d)
	}
	return len(DemoDoctors), nil
}

func (m *Memory) ListDoctors(_ context.Context, specialty string) ([]model.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Doctor{}
	for _, d := range m.doctors {
		if specialty == "" || d.Specialty == specialty {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetDoctor(_ context.Context, id int64) (*model.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (m *Memory) CreateAppointment(_ context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.appointments {
		if x.DoctorID == a.DoctorID && x.AppointmentTime.Equal(a.AppointmentTime) {
			return ErrConflict
		}
	}
	a.ID = m.id()
	m.appointments[a.ID] = *a
	return nil
}

func (m *Memory) ListAppointments(_ context.Context, userID int64) ([]model.AppointmentView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var own []model.Appointment
	for _, a := range m.appointments {
		if a.UserID == userID {
			own = append(own, a)
		}
	}
	sort.Slice(own, func(i, j int) bool {
		if own[i].AppointmentTime.Equal(own[j].AppointmentTime) {
			return own[i].ID < own[j].ID
		}
		return own[i].AppointmentTime.Before(own[j].AppointmentTime)
	})

	out := make([]model.AppointmentView, 0, len(own))
	for _, a := range own {
		v := model.AppointmentView{
			ID:              a.ID,
			AppointmentTime: a.AppointmentTime.Format(model.TimeLayout),
			DoctorName:      "Unknown",
			Specialty:       "Unknown",
			Status:          a.Status,
		}
		if d, ok := m.doctors[a.DoctorID]; ok {
			v.DoctorName, v.Specialty = d.FullName, d.Specialty
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *Memory) GetAppointment(_ context.Context, id int64) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *Memory) DeleteAppointment(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(m.appointments, id)
	return nil
}
