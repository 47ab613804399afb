package model

import "strings"

// taskColumn 可更新的 tasks 列，集合在编译期固定
type taskColumn string

const (
	taskColumnTitle             taskColumn = "title"
	taskColumnDescription       taskColumn = "description"
	taskColumnDeadline          taskColumn = "deadline"
	taskColumnResponsiblePerson taskColumn = "responsible_person"
	taskColumnCompleted         taskColumn = "completed"
)

// Assignment 一个 "列 = 值" 赋值
type Assignment struct {
	Column taskColumn
	Value  any
}

// TaskPatch 任务的部分更新，nil 字段表示未提供
type TaskPatch struct {
	Title             *string `json:"title,omitempty"`
	Description       *string `json:"description,omitempty"`
	Deadline          *Date   `json:"deadline,omitempty"`
	ResponsiblePerson *string `json:"responsiblePerson,omitempty"`
	Completed         *bool   `json:"completed,omitempty"`
}

// IsEmpty 是否一个字段都没有提供
func (p TaskPatch) IsEmpty() bool {
	return len(p.Assignments()) == 0
}

// Validate 已提供的必填字段不能为空
func (p TaskPatch) Validate() string {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return "title cannot be empty"
	}
	if p.ResponsiblePerson != nil && strings.TrimSpace(*p.ResponsiblePerson) == "" {
		return "responsiblePerson cannot be empty"
	}
	if p.Deadline != nil && p.Deadline.IsZero() {
		return "deadline cannot be empty"
	}
	return ""
}

// Assignments 按固定列顺序返回已提供字段的赋值
func (p TaskPatch) Assignments() []Assignment {
	var out []Assignment
	if p.Title != nil {
		out = append(out, Assignment{taskColumnTitle, *p.Title})
	}
	if p.Description != nil {
		out = append(out, Assignment{taskColumnDescription, *p.Description})
	}
	if p.Deadline != nil {
		out = append(out, Assignment{taskColumnDeadline, *p.Deadline})
	}
	if p.ResponsiblePerson != nil {
		out = append(out, Assignment{taskColumnResponsiblePerson, *p.ResponsiblePerson})
	}
	if p.Completed != nil {
		out = append(out, Assignment{taskColumnCompleted, *p.Completed})
	}
	return out
}
