package javagen

const entityTemplate = `// Code generated by schemaforge. DO NOT EDIT.
package {{.Package}}.entity;

import jakarta.persistence.*;
{{range .Imports}}import {{.}};
{{end}}
@Entity
@Table(name = "{{.Table}}")
public class {{.Entity}} {

{{range .Fields}}    {{.Annotation}}
    private {{.Type}} {{.Name}};

{{end}}{{range .Relations}}    {{.Annotation}}
{{if .JoinLine}}    {{.JoinLine}}
{{end}}    private {{.Type}} {{.Name}};

{{end}}{{range .Fields}}    public {{.Type}} get{{.Name | title}}() {
        return {{.Name}};
    }

    public void set{{.Name | title}}({{.Type}} {{.Name}}) {
        this.{{.Name}} = {{.Name}};
    }

{{end}}}
`

const repositoryTemplate = `// Code generated by schemaforge. DO NOT EDIT.
package {{.Package}}.repository;

{{range .PKImports}}import {{.}};

{{end}}import org.springframework.data.jpa.repository.JpaRepository;
import org.springframework.stereotype.Repository;

import {{.Package}}.entity.{{.Entity}};

@Repository
public interface {{.Entity}}Repository extends JpaRepository<{{.Entity}}, {{.PKType}}> {
}
`

const serviceTemplate = `// Code generated by schemaforge. DO NOT EDIT.
package {{.Package}}.service;

import java.util.List;
import java.util.Optional;
{{range .PKImports}}import {{.}};
{{end}}
import org.springframework.stereotype.Service;
import org.springframework.transaction.annotation.Transactional;

import {{.Package}}.entity.{{.Entity}};
import {{.Package}}.repository.{{.Entity}}Repository;

@Service
@Transactional
public class {{.Entity}}Service {

    private final {{.Entity}}Repository repository;

    public {{.Entity}}Service({{.Entity}}Repository repository) {
        this.repository = repository;
    }

    public Optional<{{.Entity}}> findById({{.PKType}} id) {
        return repository.findById(id);
    }

    public List<{{.Entity}}> findAll() {
        return repository.findAll();
    }

    public {{.Entity}} save({{.Entity}} entity) {
        return repository.save(entity);
    }

    public void deleteById({{.PKType}} id) {
        repository.deleteById(id);
    }
}
`

const controllerTemplate = `// Code generated by schemaforge. DO NOT EDIT.
package {{.Package}}.controller;

import java.util.List;
{{range .PKImports}}import {{.}};
{{end}}
import org.springframework.http.ResponseEntity;
import org.springframework.web.bind.annotation.*;

import {{.Package}}.entity.{{.Entity}};
import {{.Package}}.service.{{.Entity}}Service;

@RestController
@RequestMapping("{{.Route}}")
public class {{.Entity}}Controller {

    private final {{.Entity}}Service service;

    public {{.Entity}}Controller({{.Entity}}Service service) {
        this.service = service;
    }

    @GetMapping
    public List<{{.Entity}}> list() {
        return service.findAll();
    }

    @GetMapping("/{id}")
    public ResponseEntity<{{.Entity}}> get(@PathVariable {{.PKType}} id) {
        return service.findById(id)
                .map(ResponseEntity::ok)
                .orElseGet(() -> ResponseEntity.notFound().build());
    }

    @PostMapping
    public {{.Entity}} create(@RequestBody {{.Entity}} entity) {
        return service.save(entity);
    }

    @DeleteMapping("/{id}")
    public ResponseEntity<Void> delete(@PathVariable {{.PKType}} id) {
        service.deleteById(id);
        return ResponseEntity.noContent().build();
    }
}
`

const entityTestTemplate = `// Code generated by schemaforge. DO NOT EDIT.
package {{.Package}}.entity;

import org.junit.jupiter.api.Test;

import static org.junit.jupiter.api.Assertions.assertNotNull;

class {{.Entity}}Test {

    @Test
    void instantiates() {
        assertNotNull(new {{.Entity}}());
    }
}
`
