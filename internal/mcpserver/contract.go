package mcpserver

// GoalFormatContract describes the stored goal shape for LLM clients.
const GoalFormatContract = `# Metas Goal Format Contract

All goals live in one JSON array under the storage key ` + "`gestorMetasApp`" + `,
newest first. Tools return goals in this shape plus two read-only fields:
` + "`progresso`" + ` (0-100) and ` + "`prazo`" + ` (deadline label).

## Goal

` + "```" + `json
{
  "id": 1736937600000,
  "titulo": "Correr 10 km",
  "descricao": "Antes do verão",
  "status": "Em Andamento",
  "data_criacao": "2025-01-15T10:40:00.000Z",
  "prazoFinal": "2025-06-30",
  "categoria": "Saúde",
  "submetas": [
    {"id": 1736937600001, "texto": "Comprar tênis", "concluida": true},
    {"id": 1736937600002, "texto": "Correr 5 km", "concluida": false}
  ]
}
` + "```" + `

## Rules

1. ` + "`titulo`" + ` is required and never blank.
2. ` + "`id`" + ` and ` + "`data_criacao`" + ` are assigned on creation and never change.
3. ` + "`status`" + ` is one of ` + "`Pendente`" + `, ` + "`Em Andamento`" + `, ` + "`Concluída`" + `.
4. With a non-empty checklist the status is derived: all steps done gives
   ` + "`Concluída`" + `, some done gives ` + "`Em Andamento`" + `, none done gives
   ` + "`Pendente`" + `. With an empty checklist the last status is kept.
5. ` + "`prazoFinal`" + ` is ` + "`YYYY-MM-DD`" + ` or absent. It is a calendar day with no time.
6. ` + "`categoria`" + ` defaults to ` + "`General`" + `. The filter value ` + "`All`" + ` is reserved.
7. Goals with status ` + "`Concluída`" + ` are archived; every other goal is active.
`
