package mapping

import "github.com/ogurasousui/payroll-forensics/internal/core/dataset"

// 正規化後の論理フィールド名です。出力シートのヘッダーにも使用します。
const (
	FieldID              = "id"
	FieldName            = "name"
	FieldHireDate        = "hire_date"
	FieldTerminationDate = "termination_date"
	FieldPaymentDate     = "payment_date"
	FieldEmployeeID      = "employee_id"
	FieldEmployeeName    = "employee_name"
	FieldAmount          = "amount"
	FieldBankAccount     = "bank_account"
	FieldDate            = "date"
	FieldContractNumber  = "contract_number"
	FieldStatus          = "status"
	FieldStartDate       = "start_date"
	FieldEndDate         = "end_date"
	FieldHolderName      = "holder_name"
	FieldHolderID        = "holder_id"
	FieldRelationship    = "relationship"
)

// Field は論理フィールドと、ヘッダー照合に使う候補名の一覧です。
type Field struct {
	Name     string
	Synonyms []string
}

// Schema はテーブル種別ごとの論理フィールド定義です。
type Schema struct {
	Kind   dataset.Kind
	Fields []Field
}

// FieldNames は論理フィールド名を定義順に返します。
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

func (s Schema) has(field string) bool {
	for _, f := range s.Fields {
		if f.Name == field {
			return true
		}
	}
	return false
}

var (
	idSynonyms      = []string{"cedula", "dni", "id", "identificacion"}
	accountSynonyms = []string{"cuenta_bancaria", "cuenta", "cta", "iban"}
)

var schemas = map[dataset.Kind]Schema{
	dataset.KindEmployees: {
		Kind: dataset.KindEmployees,
		Fields: []Field{
			{Name: FieldID, Synonyms: idSynonyms},
			{Name: FieldName, Synonyms: []string{"nombre", "empleado", "apellidos_nombres", "colaborador"}},
			{Name: FieldHireDate, Synonyms: []string{"fecha_ingreso", "f_ingreso"}},
			{Name: FieldTerminationDate, Synonyms: []string{"fecha_egreso", "f_egreso", "baja", "fecha_baja"}},
		},
	},
	dataset.KindPayroll: {
		Kind: dataset.KindPayroll,
		Fields: []Field{
			{Name: FieldPaymentDate, Synonyms: []string{"fecha_pago", "fecha", "periodo", "mes"}},
			{Name: FieldEmployeeID, Synonyms: []string{"cedula", "dni", "id"}},
			{Name: FieldEmployeeName, Synonyms: []string{"nombre", "empleado", "colaborador"}},
			{Name: FieldAmount, Synonyms: []string{"monto", "valor", "salario", "neto_pagar"}},
			{Name: FieldBankAccount, Synonyms: accountSynonyms},
		},
	},
	dataset.KindAttendance: {
		Kind: dataset.KindAttendance,
		Fields: []Field{
			{Name: FieldEmployeeID, Synonyms: []string{"cedula", "dni", "id"}},
			{Name: FieldDate, Synonyms: []string{"fecha", "dia", "f_marca"}},
		},
	},
	dataset.KindAuthorizedAccounts: {
		Kind: dataset.KindAuthorizedAccounts,
		Fields: []Field{
			{Name: FieldBankAccount, Synonyms: accountSynonyms},
		},
	},
	dataset.KindContracts: {
		Kind: dataset.KindContracts,
		Fields: []Field{
			{Name: FieldEmployeeID, Synonyms: []string{"cedula", "dni", "id"}},
			{Name: FieldContractNumber, Synonyms: []string{"numero_contrato", "contrato", "nro_contrato"}},
			{Name: FieldStatus, Synonyms: []string{"estado_contrato", "estado"}},
			{Name: FieldStartDate, Synonyms: []string{"fecha_inicio", "inicio"}},
			{Name: FieldEndDate, Synonyms: []string{"fecha_fin", "fin"}},
		},
	},
	dataset.KindRelatedParties: {
		Kind: dataset.KindRelatedParties,
		Fields: []Field{
			{Name: FieldBankAccount, Synonyms: accountSynonyms},
			{Name: FieldHolderName, Synonyms: []string{"titular_nombre", "titular"}},
			{Name: FieldHolderID, Synonyms: []string{"titular_id", "cedula_titular"}},
			{Name: FieldRelationship, Synonyms: []string{"relacion", "parentesco"}},
		},
	},
}

// SchemaFor はテーブル種別のスキーマを返します。
func SchemaFor(kind dataset.Kind) (Schema, error) {
	s, ok := schemas[kind]
	if !ok {
		return Schema{}, ErrUnknownKind
	}
	return s, nil
}
