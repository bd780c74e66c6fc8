package prompt

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPickerModel_NavigateAndSelect(t *testing.T) {
	var m tea.Model = newPickerModel(testTemplates)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	pm := m.(pickerModel)
	assert.Equal(t, "starter-kit", pm.choice)
	assert.NotNil(t, cmd)
}

func TestPickerModel_Filter(t *testing.T) {
	var m tea.Model = newPickerModel(testTemplates)
	m, _ = m.Update(keyRunes("axios"))

	pm := m.(pickerModel)
	assert.Len(t, pm.filtered, 1)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "clients/axios", m.(pickerModel).choice)
}

func TestPickerModel_Escape(t *testing.T) {
	var m tea.Model = newPickerModel(testTemplates)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	pm := m.(pickerModel)
	assert.True(t, pm.cancelled)
	assert.Empty(t, pm.choice)
}

func TestNameModel_DefaultAndValidation(t *testing.T) {
	var m tea.Model = newNameModel("express")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "express", m.(nameModel).value)

	m = newNameModel("express")
	m, _ = m.Update(keyRunes("a:b"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	nm := m.(nameModel)
	assert.Empty(t, nm.value)
	assert.Error(t, nm.err)
}

func TestNameModel_CtrlC(t *testing.T) {
	var m tea.Model = newNameModel("express")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.(nameModel).cancelled)
}
