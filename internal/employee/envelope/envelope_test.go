package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devkichauhan/reliaquest/internal/employee/failure"
	"github.com/devkichauhan/reliaquest/internal/employee/models"
)

func mustParse(t *testing.T, body string) *models.Envelope {
	t.Helper()
	env, err := Parse([]byte(body))
	require.NoError(t, err)
	return env
}

func TestParse(t *testing.T) {
	t.Run("empty body yields no envelope", func(t *testing.T) {
		env, err := Parse([]byte("  "))
		require.NoError(t, err)
		assert.Nil(t, env)
	})

	t.Run("status and error are kept", func(t *testing.T) {
		env := mustParse(t, `{"status":"Failed to process request.","error":"boom"}`)
		assert.Equal(t, "Failed to process request.", env.Status)
		assert.Equal(t, "boom", env.Error)
		assert.Empty(t, env.Data)
	})

	t.Run("malformed body is a decode failure", func(t *testing.T) {
		_, err := Parse([]byte(`{"data":`))
		assert.True(t, failure.Is(err, failure.KindDecode))
	})
}

func TestAbsentData(t *testing.T) {
	bodies := map[string]string{
		"null data":    `{"data":null,"status":"ok"}`,
		"missing data": `{"status":"ok"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			env := mustParse(t, body)

			one, err := DecodeOne[models.Employee](env)
			require.NoError(t, err)
			assert.Nil(t, one)

			many, err := DecodeMany[models.Employee](env)
			require.NoError(t, err)
			assert.NotNil(t, many)
			assert.Empty(t, many)
		})
	}

	t.Run("nil envelope", func(t *testing.T) {
		one, err := DecodeOne[models.Employee](nil)
		require.NoError(t, err)
		assert.Nil(t, one)

		many, err := DecodeMany[models.Employee](nil)
		require.NoError(t, err)
		assert.Empty(t, many)
	})
}

func TestDecodeOne(t *testing.T) {
	t.Run("unknown fields are ignored", func(t *testing.T) {
		env := mustParse(t, `{"data":{"id":"1","employee_name":"Devki","employee_salary":100,`+
			`"employee_age":30,"employee_title":"Engineer","employee_email":"e@x","department":"R&D"}}`)

		e, err := DecodeOne[models.Employee](env)
		require.NoError(t, err)
		assert.Equal(t, &models.Employee{ID: "1", Name: "Devki", Salary: 100, Age: 30, Title: "Engineer", Email: "e@x"}, e)
	})

	t.Run("optional fields may be absent", func(t *testing.T) {
		env := mustParse(t, `{"data":{"id":"1","employee_name":"Devki","employee_salary":100}}`)

		e, err := DecodeOne[models.Employee](env)
		require.NoError(t, err)
		assert.Equal(t, 0, e.Age)
	})

	t.Run("missing required field", func(t *testing.T) {
		env := mustParse(t, `{"data":{"id":"1","employee_salary":100}}`)

		_, err := DecodeOne[models.Employee](env)
		require.Error(t, err)
		assert.True(t, failure.Is(err, failure.KindDecode))
		assert.Contains(t, err.Error(), "employee_name")
	})

	t.Run("null required field", func(t *testing.T) {
		env := mustParse(t, `{"data":{"id":null,"employee_name":"Devki","employee_salary":100}}`)

		_, err := DecodeOne[models.Employee](env)
		assert.True(t, failure.Is(err, failure.KindDecode))
	})

	t.Run("wrong primitive kind", func(t *testing.T) {
		env := mustParse(t, `{"data":{"id":"1","employee_name":"Devki","employee_salary":"lots"}}`)

		_, err := DecodeOne[models.Employee](env)
		assert.True(t, failure.Is(err, failure.KindDecode))
	})

	t.Run("list where object expected", func(t *testing.T) {
		env := mustParse(t, `{"data":[]}`)

		_, err := DecodeOne[models.Employee](env)
		assert.True(t, failure.Is(err, failure.KindDecode))
	})

	t.Run("types without a schema decode directly", func(t *testing.T) {
		env := mustParse(t, `{"data":"Employee deleted successfully"}`)

		msg, err := DecodeOne[string](env)
		require.NoError(t, err)
		assert.Equal(t, "Employee deleted successfully", *msg)
	})
}

func TestDecodeMany(t *testing.T) {
	t.Run("decodes every item in order", func(t *testing.T) {
		env := mustParse(t, `{"data":[`+
			`{"id":"1","employee_name":"Devki","employee_salary":100},`+
			`{"id":"2","employee_name":"Pooja","employee_salary":200}]}`)

		list, err := DecodeMany[models.Employee](env)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Devki", list[0].Name)
		assert.Equal(t, "Pooja", list[1].Name)
	})

	t.Run("empty list", func(t *testing.T) {
		list, err := DecodeMany[models.Employee](mustParse(t, `{"data":[]}`))
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("object where list expected", func(t *testing.T) {
		_, err := DecodeMany[models.Employee](mustParse(t, `{"data":{"id":"1"}}`))
		assert.True(t, failure.Is(err, failure.KindDecode))
	})

	t.Run("one bad item fails the whole list", func(t *testing.T) {
		env := mustParse(t, `{"data":[{"id":"1","employee_name":"Devki","employee_salary":100},{"id":"2"}]}`)

		_, err := DecodeMany[models.Employee](env)
		require.Error(t, err)
		assert.True(t, failure.Is(err, failure.KindDecode))
		assert.Contains(t, err.Error(), "item 1")
	})
}
