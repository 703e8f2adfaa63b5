package models

// Customer is the visitor data shown on the confirmation page and kept in the session.
// Field names follow the upstream lookup services.
type Customer struct {
	Nome           string `json:"nome"`
	CPF            string `json:"cpf"`
	Phone          string `json:"phone"`
	DataNascimento string `json:"data_nascimento,omitempty"`
	NomeMae        string `json:"nome_mae,omitempty"`
	Sexo           string `json:"sexo,omitempty"`
	TodayDate      string `json:"today_date,omitempty"`
}

// DefaultCustomer is displayed when no lookup succeeded.
func DefaultCustomer() Customer {
	return Customer{
		Nome:  "JOÃO DA SILVA SANTOS",
		CPF:   "123.456.789-00",
		Phone: "11999999999",
	}
}
