// Package models defines the JSON envelope returned by the REST API.
package models

import (
	"time"

	"otpviewer.org/internal/clock"
	"otpviewer.org/internal/otp"
)

const APIVersion = 2

// ResponseModel is the envelope around every API response.
type ResponseModel struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Text        string `json:"text"`
	Version     int    `json:"version"`
	Data        any    `json:"data,omitempty"`
}

// ReferencesModel carries the entities an entry or list refers to.
type ReferencesModel struct {
	Agencies []otp.Agency `json:"agencies"`
	Routes   []otp.Route  `json:"routes"`
	Stops    []otp.Stop   `json:"stops"`
	Trips    []otp.Trip   `json:"trips"`
}

type EntryData struct {
	Entry      any             `json:"entry"`
	References ReferencesModel `json:"references"`
}

type ListData struct {
	List        any             `json:"list"`
	LimitExceed bool            `json:"limitExceeded"`
	References  ReferencesModel `json:"references"`
}

type CurrentTimeData struct {
	Time         int64  `json:"time"`
	ReadableTime string `json:"readableTime"`
}

func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Agencies: []otp.Agency{},
		Routes:   []otp.Route{},
		Stops:    []otp.Stop{},
		Trips:    []otp.Trip{},
	}
}

func ResponseCurrentTime(c clock.Clock) int64 {
	if c == nil {
		return time.Now().UnixMilli()
	}
	return c.NowUnixMilli()
}

func NewOKResponse(data any, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        200,
		CurrentTime: ResponseCurrentTime(c),
		Text:        "OK",
		Version:     APIVersion,
		Data:        data,
	}
}

func NewEntryResponse(entry any, references ReferencesModel, c clock.Clock) ResponseModel {
	return NewOKResponse(EntryData{Entry: entry, References: references}, c)
}

func NewListResponse(list any, references ReferencesModel, limitExceeded bool, c clock.Clock) ResponseModel {
	return NewOKResponse(ListData{List: list, LimitExceed: limitExceeded, References: references}, c)
}

func NewCurrentTimeData(t time.Time) CurrentTimeData {
	return CurrentTimeData{
		Time:         t.UnixMilli(),
		ReadableTime: t.Format(time.RFC3339),
	}
}
