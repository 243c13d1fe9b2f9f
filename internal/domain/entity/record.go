package entity

// Record é uma linha de custo retornada pela API de relatórios, com os campos
// na mesma ordem em que aparecem na resposta.
type Record struct {
	keys   []string
	values map[string]interface{}
}

// NewRecord cria um Record vazio.
func NewRecord() *Record {
	return &Record{values: make(map[string]interface{})}
}

// RecordFromPairs builds a record from alternating key/value arguments.
func RecordFromPairs(pairs ...interface{}) *Record {
	r := NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		r.Set(key, pairs[i+1])
	}
	return r
}

// Set define o valor de um campo. Campos novos vão para o fim da ordem.
func (r *Record) Set(key string, value interface{}) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value of a field and whether the field is present.
func (r *Record) Get(key string) (interface{}, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys retorna os nomes dos campos na ordem da resposta.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}
