package domain

import "github.com/Brunogomez94/siciap-cloud/normalize"

var ordenes = &Spec{
	Name:  "ordenes",
	Table: "siciap.ordenes",
	Aliases: []Alias{
		{"Id.Llamado", "id_llamado"}, {"id_llamado", "id_llamado"}, {"Id Llamado", "id_llamado"},
		{"Llamado", "llamado"}, {"llamado", "llamado"},
		{"Proveedor", "proveedor"}, {"proveedor", "proveedor"},
		{"Codigo", "codigo"}, {"codigo", "codigo"}, {"Código", "codigo"},
		{"Item", "item"}, {"item", "item"},
		{"Monto Saldo", "saldo"}, {"Saldo", "saldo"}, {"saldo", "saldo"}, {"monto_saldo", "saldo"},
		{"Estado", "estado"}, {"estado", "estado"},
		{"Fecha OC", "fecha_orden"}, {"fecha_orden", "fecha_orden"}, {"fecha_oc", "fecha_orden"},
		{"Fec. Ult. Recep.", "fecha_vencimiento"}, {"fecha_vencimiento", "fecha_vencimiento"},
		{"Fecha Recibido Proveedor", "fecha_vencimiento"}, {"Fecha Recibido Poveedor", "fecha_vencimiento"},
		{"Producto", "observaciones"}, {"producto", "observaciones"},
		{"OC", "observaciones"}, {"oc", "observaciones"},
		{"Referencia", "observaciones"}, {"Lugar Entrega OC", "observaciones"}, {"Lugar Entrega", "observaciones"},
	},
	Fields: []Field{
		{"id_llamado", Identifier},
		{"llamado", Text},
		{"proveedor", Text},
		{"codigo", Identifier},
		{"item", Integer},
		{"saldo", NumberZero},
		{"estado", Text},
		{"fecha_orden", DateText},
		{"fecha_vencimiento", DateText},
		{"observaciones", Text},
	},
	Required:     []string{"id_llamado", "codigo"},
	Key:          []string{"id_llamado", "codigo", "item"},
	Dedup:        Recency,
	RecencyField: "fecha_orden",
}

var ejecucion = &Spec{
	Name:  "ejecucion",
	Table: "siciap.ejecucion",
	Aliases: []Alias{
		{"id_llamado", "id_llamado"}, {"Id.Llamado", "id_llamado"}, {"Id Llamado", "id_llamado"},
		{"licitacion", "licitacion"}, {"Licitacion", "licitacion"}, {"Licitación", "licitacion"},
		{"codigo", "codigo"}, {"Codigo", "codigo"}, {"Código", "codigo"},
		{"item", "item"}, {"Item", "item"},
		{"cantidad_ejecutada", "cantidad_ejecutada"}, {"Cantidad Ejecutada", "cantidad_ejecutada"},
		{"cantidad", "cantidad_ejecutada"}, {"Cantidad Emitida", "cantidad_ejecutada"},
		{"Cantidad Maxima", "cantidad_ejecutada"}, {"Cantidad Máxima", "cantidad_ejecutada"},
		{"cantidad_emitida", "cantidad_ejecutada"}, {"cantidad_maxima", "cantidad_ejecutada"},
		{"precio_unitario", "precio_unitario"}, {"Precio Unitario", "precio_unitario"}, {"P.Unit.", "precio_unitario"},
		{"monto_total", "monto_total"}, {"Monto Total", "monto_total"}, {"monto", "monto_total"},
		{"Monto Adjudicado", "monto_total"}, {"Monto Emitido", "monto_total"},
		{"fecha_ejecucion", "fecha_ejecucion"}, {"Fecha Ejecucion", "fecha_ejecucion"}, {"Fecha Ejecución", "fecha_ejecucion"},
		{"fecha", "fecha_ejecucion"},
		{"observaciones", "observaciones"}, {"Observaciones", "observaciones"}, {"Obs.", "observaciones"},
	},
	Fields: []Field{
		{"id_llamado", Identifier},
		{"licitacion", Identifier},
		{"codigo", Identifier},
		{"item", Integer},
		{"cantidad_ejecutada", Number},
		{"precio_unitario", Number},
		{"monto_total", Number},
		{"fecha_ejecucion", Date},
		{"observaciones", Text},
	},
	Required: []string{"id_llamado", "licitacion", "codigo", "item"},
	Key:      []string{"id_llamado", "licitacion", "codigo", "item"},
	Dedup:    Completeness,
}

var stockCritico = &Spec{
	Name:  "stock_critico",
	Table: "siciap.stock_critico",
	Aliases: []Alias{
		{"codigo", "codigo"}, {"Codigo", "codigo"}, {"Código", "codigo"}, {"CODIGO", "codigo"},
		{"descripcion", "descripcion"}, {"Descripcion", "descripcion"}, {"Descripción", "descripcion"},
		{"producto", "descripcion"}, {"Producto", "descripcion"}, {"Medicamento", "descripcion"},
		{"stock_disponible", "stock_disponible"}, {"Stock Disponible", "stock_disponible"},
		{"stock", "stock_disponible"}, {"Stock", "stock_disponible"},
		{"stock_minimo", "stock_minimo"}, {"Stock Minimo", "stock_minimo"}, {"Stock Mínimo", "stock_minimo"},
		{"minimo", "stock_minimo"}, {"Mínimo", "stock_minimo"},
		{"dmp", "dmp"}, {"DMP", "dmp"}, {"Dias Medicamento Pendiente", "dmp"}, {"Días Medicamento Pendiente", "dmp"},
		{"estado", "estado"}, {"Estado", "estado"},
	},
	Fields: []Field{
		{"codigo", Identifier},
		{"descripcion", Text},
		{"stock_disponible", NumberZero},
		{"stock_minimo", NumberZero},
		{"dmp", NumberZero},
		{"estado", Text},
	},
	Required: []string{"codigo"},
	Key:      []string{"codigo"},
	Dedup:    Completeness,
	Derived: map[string]DeriveFunc{
		"estado": stockEstado,
	},
}

// stockEstado classifies availability against the declared minimum.
func stockEstado(row Row) normalize.Value {
	stock := numeric(row["stock_disponible"])
	minimo := numeric(row["stock_minimo"])
	switch {
	case stock <= 0:
		return normalize.TextValue("critico")
	case stock <= minimo:
		return normalize.TextValue("bajo")
	default:
		return normalize.TextValue("normal")
	}
}

func numeric(v normalize.Value) float64 {
	switch v.Kind {
	case normalize.KindFloat:
		return v.Float
	case normalize.KindInt:
		return float64(v.Int)
	default:
		return 0
	}
}

var pedidos = &Spec{
	Name:  "pedidos",
	Table: "siciap.pedidos",
	Aliases: []Alias{
		{"id_llamado", "id_llamado"}, {"Id.Llamado", "id_llamado"}, {"Id Llamado", "id_llamado"},
		{"codigo", "codigo"}, {"Codigo", "codigo"}, {"Código", "codigo"},
		{"item", "item"}, {"Item", "item"},
		{"cantidad_solicitada", "cantidad_solicitada"}, {"Cantidad Solicitada", "cantidad_solicitada"},
		{"cantidad", "cantidad_solicitada"},
		{"cantidad_pendiente", "cantidad_pendiente"}, {"Cantidad Pendiente", "cantidad_pendiente"},
		{"pendiente", "cantidad_pendiente"},
		{"fecha_solicitud", "fecha_solicitud"}, {"Fecha Solicitud", "fecha_solicitud"},
		{"fecha_requerida", "fecha_requerida"}, {"Fecha Requerida", "fecha_requerida"},
		{"estado", "estado"}, {"Estado", "estado"},
		{"observaciones", "observaciones"}, {"Observaciones", "observaciones"},
	},
	Fields: []Field{
		{"id_llamado", Identifier},
		{"codigo", Identifier},
		{"item", Integer},
		{"cantidad_solicitada", NumberZero},
		{"cantidad_pendiente", NumberZero},
		{"fecha_solicitud", Date},
		{"fecha_requerida", Date},
		{"estado", Text},
		{"observaciones", Text},
	},
	Required:     []string{"codigo"},
	Key:          []string{"id_llamado", "codigo", "item"},
	Dedup:        Recency,
	RecencyField: "fecha_solicitud",
	Defaults: map[string]string{
		"estado": "pendiente",
	},
}

var vencimientosParques = &Spec{
	Name:  "vencimientos_parques",
	Table: "siciap.vencimientos_parques",
	Aliases: []Alias{
		{"codigo", "codigo"}, {"Codigo", "codigo"}, {"Código", "codigo"}, {"codigo_producto", "codigo"},
		{"descripcion", "descripcion"}, {"Descripcion", "descripcion"}, {"Descripción", "descripcion"},
		{"nombre_producto", "descripcion"}, {"producto_completo", "descripcion"},
		{"fec_vencimiento", "fec_vencimiento"}, {"fecha_vencimiento", "fec_vencimiento"},
		{"Fecha Vencimiento", "fec_vencimiento"}, {"Vencimiento", "fec_vencimiento"},
		{"stock_disponible", "stock_disponible"}, {"Stock", "stock_disponible"}, {"stock", "stock_disponible"},
		{"valores_de_medidas", "stock_disponible"},
		{"parque", "parque"}, {"Parque", "parque"}, {"nombre_sucursal", "parque"},
		{"observaciones", "observaciones"}, {"Observaciones", "observaciones"},
	},
	Fields: []Field{
		{"codigo", Identifier},
		{"descripcion", Text},
		{"fec_vencimiento", Date},
		{"stock_disponible", NumberZero},
		{"parque", Text},
		{"observaciones", Text},
	},
	Required: []string{"codigo"},
	Key:      []string{"codigo", "parque", "fec_vencimiento"},
	Dedup:    Completeness,
	Measure: &MeasureFilter{
		NameHeaders: []string{"Nombres de medidas", "nombres_de_medidas"},
		Keep:        "STOCK DISPONIBLE",
	},
	CSVAllowed: true,
}
