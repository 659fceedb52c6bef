package models

import "time"

type Player struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Country       string    `json:"country"`
	RegisterDate  time.Time `json:"register_date"`
	InitialRating int       `json:"initial_rating"`
	Rating        int       `json:"rating"`
	FideID        int64     `json:"fide_id"`
	FideTitle     string    `json:"fide_title"`
}

type PlayerFilter struct {
	Search   string
	IDs      []int64
	DateFrom *time.Time
	DateTo   *time.Time
	OrderBy  []string
	Limit    int
	Offset   int
}
